package push

import (
	"context"
	"time"
)

// RetryConfig defines simple retry behavior for gateway calls.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 2,
		Delay:       500 * time.Millisecond,
	}
}

// retryWithBackoff retries transient failures only; config, validation and
// per-token provider verdicts are final.
func retryWithBackoff(ctx context.Context, config *RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if pushErr, ok := err.(*PushError); ok {
			if pushErr.Type == ErrTypeConfig || pushErr.Type == ErrTypeValidation || pushErr.Type == ErrTypeProvider {
				return err
			}
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(config.Delay):
			}
		}
	}

	return lastErr
}
