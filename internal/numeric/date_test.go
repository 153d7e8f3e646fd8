package numeric_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/numeric"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"iso_slash", "2024/01/15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"day_first_slash", "15/01/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"day_first_dash", "15-01-2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"day_first_dot", "15.01.2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"single_digit", "5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"spanish_long_form", "15 de enero de 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"spanish_uppercase", "3 de Marzo de 2023", time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := numeric.ParseDate(tc.in)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestParseDate_Unresolved(t *testing.T) {
	for _, in := range []string{"", "not a date", "99/99/9999", "31 de febrero de 2024", "15 de brumario de 2024"} {
		_, ok := numeric.ParseDate(in)
		assert.False(t, ok, "input %q", in)
	}
}
