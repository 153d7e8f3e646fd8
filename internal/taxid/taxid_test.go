package taxid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"facturo/internal/taxid"
)

func TestValid_CIF(t *testing.T) {
	assert.True(t, taxid.Valid("B12345678"))
	assert.True(t, taxid.Valid("A1234567J"))
	assert.True(t, taxid.Valid("W87654321"))
}

func TestValid_NIF(t *testing.T) {
	assert.True(t, taxid.Valid("12345678Z"))
	assert.True(t, taxid.Valid("00000000T"))
}

func TestValid_NIE(t *testing.T) {
	assert.True(t, taxid.Valid("X1234567L"))
	assert.True(t, taxid.Valid("Y7654321B"))
	assert.True(t, taxid.Valid("Z0000000A"))
}

func TestValid_Rejections(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
	}{
		{"empty", ""},
		{"too_short", "B1234567"},
		{"too_long", "B123456789"},
		{"cif_bad_org_letter", "I12345678"}, // I is not a CIF organization letter
		{"nif_letter_in_digits", "1234A678Z"},
		{"nie_bad_prefix", "W1234567L"},
		{"lowercase", "b12345678"}, // callers must normalize first
		{"all_letters", "ABCDEFGHI"},
		{"trailing_symbol", "B1234567-"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, taxid.Valid(tc.candidate))
		})
	}
}

func TestNormalize(t *testing.T) {
	got, ok := taxid.Normalize("b-12 345 678")
	assert.True(t, ok)
	assert.Equal(t, "B12345678", got)

	_, ok = taxid.Normalize("B123")
	assert.False(t, ok)
}

func TestNormalize_ThenValid(t *testing.T) {
	got, ok := taxid.Normalize("x1234567-l")
	assert.True(t, ok)
	assert.True(t, taxid.Valid(got))
}
