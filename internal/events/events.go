package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Youhorng/notify-service/internal/domain"
)

// LifecycleQueueName is the durable queue terminal lifecycle transitions
// are published to for downstream consumers (dashboards, audit).
const LifecycleQueueName = "alerts.lifecycle"

// AlertEvent is the broker payload emitted when a notification reaches a
// terminal state. Publishing is telemetry only; delivery never flows
// through the broker.
type AlertEvent struct {
	NotificationID string           `json:"notificationId"`
	TransactionID  string           `json:"transactionId"`
	Status         domain.Status    `json:"status"`
	RiskLevel      domain.RiskLevel `json:"riskLevel"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

func (e AlertEvent) Validate() error {
	if strings.TrimSpace(e.NotificationID) == "" {
		return fmt.Errorf("notificationId is required")
	}
	if strings.TrimSpace(e.TransactionID) == "" {
		return fmt.Errorf("transactionId is required")
	}
	if !e.Status.IsTerminal() {
		return fmt.Errorf("status %q is not terminal", e.Status)
	}
	return nil
}

// Publisher publishes lifecycle events. Implementations must be safe to
// call best-effort: callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, event AlertEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, AlertEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }
