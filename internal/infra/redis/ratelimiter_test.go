package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestDeliveryRateLimiterAllow(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_000, 0)
	limiter, err := newDeliveryRateLimiter(
		rdb,
		"telegram",
		2,
		func() time.Time { return now },
		sleepWithContext,
	)
	if err != nil {
		t.Fatalf("newDeliveryRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("first call should be allowed")
	}

	allowed, err = limiter.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("second call should be allowed")
	}

	allowed, err = limiter.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("third call should be rejected by rate limit")
	}

	now = now.Add(time.Second)
	allowed, err = limiter.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("new second window should allow call")
	}
}

func TestDeliveryRateLimiterKeyedByChannel(t *testing.T) {
	t.Parallel()

	// Replicas delivering to different channels must not share a window.
	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_100, 0)
	nowFn := func() time.Time { return now }

	telegram, err := newDeliveryRateLimiter(rdb, "telegram", 1, nowFn, sleepWithContext)
	if err != nil {
		t.Fatalf("newDeliveryRateLimiter(telegram) error = %v", err)
	}
	simulated, err := newDeliveryRateLimiter(rdb, "simulated", 1, nowFn, sleepWithContext)
	if err != nil {
		t.Fatalf("newDeliveryRateLimiter(simulated) error = %v", err)
	}

	allowed, err := telegram.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("telegram should be allowed on first request")
	}

	allowed, err = simulated.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("simulated should be allowed on first request")
	}

	allowed, err = telegram.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("telegram second request should be rejected")
	}
}

func TestDeliveryRateLimiterRequiresChannel(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	if _, err := NewDeliveryRateLimiter(rdb, "  ", 1); err == nil {
		t.Fatal("expected error for blank channel")
	}
}

func TestDeliveryRateLimiterWait(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_200, 0)
	sleepCalls := 0
	limiter, err := newDeliveryRateLimiter(
		rdb,
		"telegram",
		1,
		func() time.Time { return now },
		func(ctx context.Context, d time.Duration) error {
			sleepCalls++
			if sleepCalls == 1 {
				now = now.Add(time.Second)
			}
			return nil
		},
	)
	if err != nil {
		t.Fatalf("newDeliveryRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("expected first call to be allowed")
	}

	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if sleepCalls == 0 {
		t.Fatal("expected Wait() to sleep at least once")
	}
}

func TestDeliveryRateLimiterWaitContextDeadline(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_300, 0)
	limiter, err := newDeliveryRateLimiter(
		rdb,
		"telegram",
		1,
		func() time.Time { return now },
		sleepWithContext,
	)
	if err != nil {
		t.Fatalf("newDeliveryRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background())
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("expected first call to be allowed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	err = limiter.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func newTestRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return rdb
}
