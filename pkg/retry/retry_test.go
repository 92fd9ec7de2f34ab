package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "twtimg/pkg/errors"
	"twtimg/pkg/logger"
)

func networkErr() error {
	return errs.New(errs.ErrorTypeNetwork, 0, nil, "connection reset")
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{9, 1 * time.Second},
	}

	for _, tt := range tests {
		if delay := backoff.NextDelay(tt.attempt); delay != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, delay)
		}
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		if delay < 100*time.Millisecond || delay > 300*time.Millisecond {
			t.Fatalf("delay %v outside jitter bounds", delay)
		}
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 5 * time.Millisecond}
	if backoff.NextDelay(0) != 0 {
		t.Error("Expected zero delay before the first attempt")
	}
	if backoff.NextDelay(7) != 5*time.Millisecond {
		t.Error("Expected constant delay")
	}
}

func TestDoRetriesNetworkErrors(t *testing.T) {
	attempts := 0
	var retried []int

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return networkErr()
		}
		return nil
	}, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     IfNetwork,
		OnRetry:     func(attempt int, err error, delay time.Duration) { retried = append(retried, attempt) },
		Logger:      logger.NewTestLogger(),
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	if len(retried) != 2 {
		t.Errorf("Expected 2 retries, got %v", retried)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return networkErr()
	}, &Config{MaxAttempts: 2, Backoff: &ConstantBackoff{}, RetryIf: IfNetwork})

	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	if errs.TypeOf(err) != errs.ErrorTypeNetwork {
		t.Errorf("Expected wrapped network error, got %v", err)
	}
}

func TestDoSingleAttemptReturnsRawError(t *testing.T) {
	want := networkErr()
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return want
	}, &Config{MaxAttempts: 1, RetryIf: IfNetwork})

	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
	if err != want {
		t.Errorf("Expected the operation's error unchanged, got %v", err)
	}
}

func TestDoDoesNotRetryNonRetryable(t *testing.T) {
	attempts := 0
	serverErr := errs.New(errs.ErrorTypeServerError, 503, nil, "unavailable")

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return serverErr
	}, &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{}, RetryIf: IfNetwork})

	if attempts != 1 {
		t.Errorf("Expected a single attempt for a server error, got %d", attempts)
	}
	if !errors.Is(err, serverErr) {
		t.Errorf("Expected server error, got %v", err)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return networkErr()
	}, &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Hour}, RetryIf: IfNetwork})

	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRetryPredicates(t *testing.T) {
	rateLimited := errs.New(errs.ErrorTypeRateLimit, 429, nil, "slow down")
	auth := errs.New(errs.ErrorTypeAuth, 401, nil, "nope")

	if !IfRetryable(rateLimited) || IfRetryable(auth) || IfRetryable(errors.New("plain")) {
		t.Error("IfRetryable misclassified an error")
	}
	if IfNetwork(rateLimited) || !IfNetwork(networkErr()) {
		t.Error("IfNetwork misclassified an error")
	}
	if IfRetryable(context.Canceled) || IfNetwork(context.DeadlineExceeded) || IfNetwork(nil) {
		t.Error("Context errors must not be retried")
	}
}

func TestWait(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Expected nil for zero delay, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
