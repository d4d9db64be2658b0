package client

import (
	"context"
	"errors"
	"math"
	"time"
)

// Retry policy lives with the caller, not the executor. RetryRead wraps an
// idempotent read with up to three attempts; mutations must never go through
// here.
const (
	maxReadAttempts   = 3
	retryInitialDelay = 250 * time.Millisecond
	retryMaxDelay     = 2 * time.Second
)

// RetryRead runs fn up to three times, retrying only on TransportError with
// capped exponential backoff. Any other failure class returns immediately:
// encoding errors are programming errors, remote errors are authoritative
// answers, and decode errors already went through the fallback chain.
func RetryRead[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxReadAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		var transport *TransportError
		if !errors.As(err, &transport) {
			return zero, err
		}
		if attempt == maxReadAttempts {
			break
		}
		timer := time.NewTimer(retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func retryDelay(attempt int) time.Duration {
	delay := float64(retryInitialDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(retryMaxDelay) {
		delay = float64(retryMaxDelay)
	}
	return time.Duration(delay)
}
