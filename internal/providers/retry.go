// Package providers contains the built-in third-party vendor adapters.
// Each adapter owns exactly one vendor integration: it builds the vendor
// request, bounds the call with the configured timeout and retry budget,
// and maps the vendor vocabulary into the canonical taxonomy before any
// result crosses the adapter boundary.
package providers

import (
	"context"
	"errors"
	"time"

	"github.com/ludo-technologies/crev/domain"
)

// transientError marks a failure worth retrying: network errors and 5xx
type transientError struct {
	cause error
}

func (e *transientError) Error() string { return "transient: " + e.cause.Error() }

func (e *transientError) Unwrap() error { return e.cause }

// permanentError marks a failure that must not be retried (4xx and the like)
type permanentError struct {
	cause error
}

func (e *permanentError) Error() string { return e.cause.Error() }

func (e *permanentError) Unwrap() error { return e.cause }

// retryTransient runs fn up to 1+maxRetries times with exponential backoff,
// retrying only transient failures. The final error is unwrapped from its
// retry classification before it is returned.
func retryTransient(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var transient *transientError
		if !errors.As(lastErr, &transient) {
			break
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return classifyContextError(ctx.Err())
			case <-time.After(backoff):
			}
		}
	}
	return unwrapClassification(lastErr)
}

func unwrapClassification(err error) error {
	var transient *transientError
	if errors.As(err, &transient) {
		return transient.cause
	}
	var permanent *permanentError
	if errors.As(err, &permanent) {
		return permanent.cause
	}
	return err
}

// classifyContextError maps context expiry to the domain timeout error
func classifyContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeoutError("analysis deadline exceeded", err)
	}
	return err
}
