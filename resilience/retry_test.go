package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), DefaultRetryConfig(), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" || calls != 1 {
		t.Errorf("got result %q after %d calls", result, calls)
	}
}

func TestRetry_RecoversAfterTransientError(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" || calls != 3 {
		t.Errorf("got result %q after %d calls", result, calls)
	}
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	persistent := errors.New("persistent")
	calls := 0
	_, err := Retry(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		return "", persistent
	})
	if !errors.Is(err, persistent) {
		t.Errorf("expected persistent error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_StopsWhenContextExpires(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    10,
		InitialBackoff: 100 * time.Millisecond,
		BackoffFactor:  2.0,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := Retry(ctx, cfg, func() (string, error) {
		calls++
		return "", errors.New("always fails")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if calls >= 10 {
		t.Errorf("context should have cut the loop short, got %d calls", calls)
	}
}

func TestRetry_RetryIfGatesRetries(t *testing.T) {
	retryable := errors.New("retryable")
	fatal := errors.New("fatal")

	cfg := fastConfig(3)
	cfg.RetryIf = func(err error) bool { return errors.Is(err, retryable) }

	calls := 0
	_, _ = Retry(context.Background(), cfg, func() (string, error) {
		calls++
		return "", retryable
	})
	if calls != 3 {
		t.Errorf("retryable error should use all attempts, got %d", calls)
	}

	calls = 0
	_, err := Retry(context.Background(), cfg, func() (string, error) {
		calls++
		return "", fatal
	})
	if calls != 1 {
		t.Errorf("fatal error should stop after one attempt, got %d", calls)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("expected fatal error, got %v", err)
	}
}

func TestRetry_OnRetryObservesAttempts(t *testing.T) {
	var seen []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) {
		seen = append(seen, attempt)
	}

	_, _ = Retry(context.Background(), cfg, func() (string, error) {
		return "", errors.New("fails")
	})

	// fires before each retry, never before the first attempt
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected attempts [1 2], got %v", seen)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	if DefaultRetryIf(context.Canceled) || DefaultRetryIf(context.DeadlineExceeded) {
		t.Error("context errors must not be retried")
	}
	if !DefaultRetryIf(errors.New("connection reset")) {
		t.Error("plain errors should be retried")
	}
}

func TestBackoffFor(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{6, time.Second},
	}
	for _, tt := range tests {
		if got := backoffFor(tt.attempt, cfg); got != tt.want {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}
}
