package resilience

import (
	"context"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
	}
}

func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.Delay < 0 {
		cfg.Delay = defaults.Delay
	}
	return cfg
}

// Retry runs op until it succeeds, attempts run out, or the context ends.
// The delay between attempts is fixed; the last operation error is returned
// when every attempt fails.
func Retry(ctx context.Context, cfg RetryConfig, op func(context.Context) error) error {
	cfg = NormalizeRetryConfig(cfg)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 && cfg.Delay > 0 {
			timer := time.NewTimer(cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}
