// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Message source errors.
	ErrPermissionDenied = errors.New("message source permission denied")

	// Classifier errors.
	ErrRateLimited       = errors.New("classifier rate limited")
	ErrMalformedResponse = errors.New("malformed classifier response")
	ErrSafetyRejected    = errors.New("classifier safety rejection")
	ErrBatchFailed       = errors.New("batch classification failed")

	// Pipeline errors.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrMaxRetries     = errors.New("max retries exceeded")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// BatchError marks a failure scoped to a single batch. The run continues to
// the next batch; only permission failures abort a whole run.
type BatchError struct {
	Err         error
	BatchNumber int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d: %v", e.BatchNumber, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
