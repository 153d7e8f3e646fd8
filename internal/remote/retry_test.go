package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
)

// scriptedExtractor returns its outcomes in order, then repeats the last.
type scriptedExtractor struct {
	calls    int
	outcomes []error
	record   *domain.InvoiceRecord
}

func (s *scriptedExtractor) Extract(_ context.Context, _ *domain.DocumentContent) (*domain.InvoiceRecord, error) {
	i := s.calls
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}
	s.calls++
	if err := s.outcomes[i]; err != nil {
		return nil, err
	}
	return s.record, nil
}

func TestRetryingExtractor_SucceedsAfterTransientFailure(t *testing.T) {
	want := &domain.InvoiceRecord{InvoiceNumber: "F-1"}
	inner := &scriptedExtractor{
		outcomes: []error{&TransportError{Err: context.DeadlineExceeded}, nil},
		record:   want,
	}

	r := NewRetryingExtractor(inner, 3, time.Millisecond)
	rec, err := r.Extract(context.Background(), &domain.DocumentContent{})

	require.NoError(t, err)
	assert.Same(t, want, rec)
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingExtractor_GivesUpAfterMaxAttempts(t *testing.T) {
	inner := &scriptedExtractor{
		outcomes: []error{&TransportError{Err: assert.AnError}},
	}

	r := NewRetryingExtractor(inner, 3, time.Millisecond)
	_, err := r.Extract(context.Background(), &domain.DocumentContent{})

	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingExtractor_MalformedIsTerminal(t *testing.T) {
	inner := &scriptedExtractor{
		outcomes: []error{&MalformedResponseError{Reason: "schema violation"}},
	}

	r := NewRetryingExtractor(inner, 3, time.Millisecond)
	_, err := r.Extract(context.Background(), &domain.DocumentContent{})

	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Equal(t, 1, inner.calls)
}

func TestRetryingExtractor_HonorsContextCancellation(t *testing.T) {
	inner := &scriptedExtractor{
		outcomes: []error{&TransportError{Err: assert.AnError}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetryingExtractor(inner, 3, time.Minute)
	_, err := r.Extract(ctx, &domain.DocumentContent{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&TransportError{Err: assert.AnError}))
	assert.True(t, IsTransient(NewRateLimitError(assert.AnError, 30)))
	assert.False(t, IsTransient(&MalformedResponseError{Reason: "x"}))
	assert.False(t, IsTransient(assert.AnError))
}
