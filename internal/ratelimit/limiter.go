package ratelimit

import "context"

// RateLimiter bounds outbound delivery throughput. The delivery channel
// it protects is fixed at construction; there is one channel per process.
type RateLimiter interface {
	Allow(ctx context.Context) (bool, error)
	Wait(ctx context.Context) error
}
