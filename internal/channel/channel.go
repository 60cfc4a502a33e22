package channel

import "context"

// Channel is the outbound alert delivery port. Deliver performs exactly one
// synchronous send attempt; there is no retry or backoff at this layer.
type Channel interface {
	Deliver(ctx context.Context, content string) (*Result, error)
	Name() string
}

// Result stores delivery metadata persisted onto the notification.
type Result struct {
	MessageID string
	Content   string
}
