package events

import (
	"context"
	"testing"
	"time"

	"github.com/Youhorng/notify-service/internal/domain"
)

func TestAlertEventValidate(t *testing.T) {
	t.Parallel()

	base := AlertEvent{
		NotificationID: "7f9c24e8-3b13-4a47-9b6a-2f6f54f3c9d1",
		TransactionID:  "TXN-1",
		Status:         domain.StatusSent,
		RiskLevel:      domain.RiskCritical,
		OccurredAt:     time.Now().UTC(),
	}

	tests := []struct {
		name    string
		mutate  func(*AlertEvent)
		wantErr bool
	}{
		{
			name:   "valid sent event",
			mutate: func(e *AlertEvent) {},
		},
		{
			name: "valid failed event",
			mutate: func(e *AlertEvent) {
				e.Status = domain.StatusFailed
			},
		},
		{
			name: "missing notification id",
			mutate: func(e *AlertEvent) {
				e.NotificationID = " "
			},
			wantErr: true,
		},
		{
			name: "missing transaction id",
			mutate: func(e *AlertEvent) {
				e.TransactionID = ""
			},
			wantErr: true,
		},
		{
			name: "pending is not publishable",
			mutate: func(e *AlertEvent) {
				e.Status = domain.StatusPending
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := base
			tt.mutate(&current)

			err := current.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate() expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestNoopPublisher(t *testing.T) {
	t.Parallel()

	var p NoopPublisher
	if err := p.Publish(context.Background(), AlertEvent{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
