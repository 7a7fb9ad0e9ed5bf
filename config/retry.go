package config

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	defaultRetryBaseDelay = 100 * time.Millisecond
	retryJitterFactor     = 0.3
)

// pingWithRetry calls ping up to attempts times with exponential backoff starting at baseDelay,
// plus up to 30% jitter. Context errors end the loop at once, the last ping error is returned.
func pingWithRetry(ctx context.Context, attempts int, baseDelay time.Duration, ping func(ctx context.Context) error) error {
	attempts = max(attempts, 1)

	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			delay += time.Duration(rand.Float64() * float64(delay) * retryJitterFactor) //nolint:gosec

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = ping(ctx); lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return lastErr
		}
	}

	return lastErr
}
