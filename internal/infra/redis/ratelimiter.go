package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Youhorng/notify-service/internal/ratelimit"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// Telegram caps bots around 30 messages per second; stay under it.
	defaultLimitPerSec int64 = 25
	backoffStep              = 10 * time.Millisecond
	backoffMax               = 50 * time.Millisecond
	windowSeconds            = 1
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*DeliveryRateLimiter)(nil)

// DeliveryRateLimiter is a distributed fixed-window limiter bounding
// outbound sends for one delivery channel per second. The window key is
// shared across process replicas.
type DeliveryRateLimiter struct {
	client      *goredis.Client
	keyPrefix   string
	limitPerSec int64
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewDeliveryRateLimiter(client *goredis.Client, channel string, limitPerSec int) (*DeliveryRateLimiter, error) {
	return newDeliveryRateLimiter(client, channel, int64(limitPerSec), time.Now, sleepWithContext)
}

func newDeliveryRateLimiter(
	client *goredis.Client,
	channel string,
	limitPerSec int64,
	nowFn func() time.Time,
	sleepFn func(ctx context.Context, d time.Duration) error,
) (*DeliveryRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	normalizedChannel := strings.ToLower(strings.TrimSpace(channel))
	if normalizedChannel == "" {
		return nil, fmt.Errorf("delivery channel is required")
	}

	if limitPerSec <= 0 {
		limitPerSec = defaultLimitPerSec
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if sleepFn == nil {
		sleepFn = sleepWithContext
	}

	return &DeliveryRateLimiter{
		client:      client,
		keyPrefix:   "ratelimit:delivery:" + normalizedChannel,
		limitPerSec: limitPerSec,
		now:         nowFn,
		sleep:       sleepFn,
	}, nil
}

func (r *DeliveryRateLimiter) Allow(ctx context.Context) (bool, error) {
	if r == nil || r.client == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := fmt.Sprintf("%s:%d", r.keyPrefix, r.now().UTC().Unix())
	result, err := allowScript.Run(ctx, r.client, []string{key}, r.limitPerSec, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}

	return result == 1, nil
}

func (r *DeliveryRateLimiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	backoff := backoffStep
	for {
		allowed, err := r.Allow(ctx)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		if err := r.sleep(ctx, backoff); err != nil {
			return err
		}

		backoff += backoffStep
		if backoff > backoffMax {
			backoff = backoffMax
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
