package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("still failing")
	attempts := 0
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}, func(context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Retry(ctx, RetryConfig{MaxAttempts: 5, Delay: time.Minute}, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestNormalizeRetryConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NormalizeRetryConfig(RetryConfig{})
	if cfg.MaxAttempts != 3 {
		t.Fatalf("expected default max attempts 3, got %d", cfg.MaxAttempts)
	}
	if cfg.Delay != 0 {
		t.Fatalf("zero delay must be kept, got %v", cfg.Delay)
	}

	cfg = NormalizeRetryConfig(RetryConfig{MaxAttempts: -1, Delay: -time.Second})
	if cfg.MaxAttempts != 3 || cfg.Delay != 2*time.Second {
		t.Fatalf("negative values must fall back to defaults, got %+v", cfg)
	}
}
