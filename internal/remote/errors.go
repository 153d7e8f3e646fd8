// Package remote implements the costly LLM extraction backend the pipeline
// escalates to when local extraction is not good enough.
package remote

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TransportError indicates the remote call failed in a way that may succeed
// on retry: timeouts, connection failures, HTTP 429 and 5xx.
type TransportError struct {
	Err        error
	Status     int           // 0 when the request never got a response
	RetryAfter time.Duration // 0 when the provider gave no hint
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("remote extraction failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("remote extraction failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewRateLimitError builds the TransportError for an HTTP 429. If
// retryAfterSecs is 0 the backoff defaults to 60s.
func NewRateLimitError(err error, retryAfterSecs int) *TransportError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &TransportError{
		Err:        err,
		Status:     429,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
	}
}

// MalformedResponseError indicates the provider answered but the payload
// could not be turned into an invoice record. Retrying the identical
// request is pointless.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed remote response: %s", e.Reason)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
