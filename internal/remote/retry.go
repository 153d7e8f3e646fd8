package remote

import (
	"context"
	"errors"
	"log"
	"time"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// Retry defaults, overridable through the remote config section.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 500 * time.Millisecond
)

// RetryingExtractor decorates a RemoteExtractor with bounded retries on
// transient failures. Malformed responses and context cancellation are
// surfaced immediately.
type RetryingExtractor struct {
	inner       port.RemoteExtractor
	maxAttempts int
	backoffBase time.Duration
}

// NewRetryingExtractor wraps inner. maxAttempts <= 0 and backoffBase <= 0
// fall back to the defaults.
func NewRetryingExtractor(inner port.RemoteExtractor, maxAttempts int, backoffBase time.Duration) *RetryingExtractor {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	return &RetryingExtractor{inner: inner, maxAttempts: maxAttempts, backoffBase: backoffBase}
}

func (r *RetryingExtractor) Extract(ctx context.Context, doc *domain.DocumentContent) (*domain.InvoiceRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		rec, err := r.inner.Extract(ctx, doc)
		if err == nil {
			return rec, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}
		if attempt == r.maxAttempts {
			break
		}

		wait := r.backoff(err, attempt)
		log.Printf("[remote] attempt %d/%d failed, retrying in %s: %v", attempt, r.maxAttempts, wait, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// backoff doubles the base per attempt, but a provider-stated Retry-After
// takes precedence.
func (r *RetryingExtractor) backoff(err error, attempt int) time.Duration {
	var te *TransportError
	if errors.As(err, &te) && te.RetryAfter > 0 {
		return te.RetryAfter
	}
	return r.backoffBase << (attempt - 1)
}
