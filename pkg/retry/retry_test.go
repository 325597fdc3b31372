package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		Jitter:        time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	ctx := context.Background()
	retrier := NewDefaultRetrier()

	counter := 0
	err := retrier.Do(ctx, func(ctx context.Context) error {
		counter++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	ctx := context.Background()
	retrier := NewRetrier(fastConfig(5)).Named("ping")

	counter := 0
	err := retrier.Do(ctx, func(ctx context.Context) error {
		counter++
		if counter < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 3 {
		t.Errorf("expected 3 attempts, got %d", counter)
	}
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	ctx := context.Background()
	retrier := NewRetrier(fastConfig(2))

	expectedErr := errors.New("permanent error")
	counter := 0
	err := retrier.Do(ctx, func(ctx context.Context) error {
		counter++
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if counter != 3 { // Initial try + 2 retries
		t.Errorf("expected 3 attempts, got %d", counter)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewDefaultRetrier()

	err := retrier.Do(ctx, func(ctx context.Context) error {
		cancel()
		return errors.New("operation error after cancel")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_DelayCappedByMaxDelay(t *testing.T) {
	ctx := context.Background()
	config := &Config{
		MaxRetries:    3,
		BackoffFactor: 10,
		InitialDelay:  5 * time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		Jitter:        0,
	}

	start := time.Now()
	_ = NewRetrier(config).Do(ctx, func(ctx context.Context) error {
		return errors.New("error")
	})
	elapsed := time.Since(start)

	// 5ms + 10ms + 10ms; without the cap the last delay alone would be 500ms
	if elapsed > 300*time.Millisecond {
		t.Errorf("delays were not capped, elapsed %v", elapsed)
	}
	if elapsed < 25*time.Millisecond {
		t.Errorf("expected at least 25ms of backoff, got %v", elapsed)
	}
}
