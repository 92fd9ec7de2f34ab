package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBucket(capacity int, period time.Duration) (*TokenBucket, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tb := NewTokenBucket(capacity, period)
	tb.now = clock.Now
	tb.lastRefill = clock.Now()
	return tb, clock
}

func TestTokenBucket(t *testing.T) {
	tb, clock := newTestBucket(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}
	if tb.Remaining() != 0 {
		t.Errorf("Expected 0 remaining, got %d", tb.Remaining())
	}

	clock.Advance(14 * time.Minute)
	if tb.Allow() {
		t.Error("Expected the window to still be closed")
	}

	clock.Advance(time.Minute)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after the window")
	}
	if tb.Remaining() != 4 {
		t.Errorf("Expected 4 remaining, got %d", tb.Remaining())
	}

	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestTokenBucketWaitReturnsImmediatelyWithTokens(t *testing.T) {
	tb := NewTokenBucket(2, time.Hour)

	start := time.Now()
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("Wait() should not block while tokens remain")
	}
}

func TestTokenBucketWaitRefills(t *testing.T) {
	tb := NewTokenBucket(1, 100*time.Millisecond)
	tb.Allow()

	start := time.Now()
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("Wait() should block until the window refills")
	}
}

func TestTokenBucketWaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	tb.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(0, time.Minute).(Unlimited); !ok {
		t.Error("Expected Unlimited when requests is zero")
	}
	if _, ok := New(10, 0).(Unlimited); !ok {
		t.Error("Expected Unlimited when window is zero")
	}
	if _, ok := New(900, 15*time.Minute).(*TokenBucket); !ok {
		t.Error("Expected a token bucket")
	}
}

func TestUnlimited(t *testing.T) {
	var l Limiter = Unlimited{}
	for i := 0; i < 1000; i++ {
		if !l.Allow() {
			t.Fatal("Unlimited should always allow")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected canceled context to surface, got %v", err)
	}
}
