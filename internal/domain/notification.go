package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the delivery lifecycle state of a notification.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// CanTransitionTo reports whether the status may move to next. The only
// legal moves are pending -> sent and pending -> failed.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// RiskLevel classifies an alert by its fraud probability.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
)

func (r RiskLevel) String() string { return string(r) }

// Glyph returns the display symbol rendered next to the risk label.
func (r RiskLevel) Glyph() string {
	switch r {
	case RiskCritical:
		return "🚨"
	case RiskHigh:
		return "⚠️"
	default:
		return "🔔"
	}
}

// RiskLevelFor maps a fraud probability to its risk tier. Everything below
// 0.7 is MEDIUM; there is no LOW tier.
func RiskLevelFor(probability float64) RiskLevel {
	switch {
	case probability >= 0.8:
		return RiskCritical
	case probability >= 0.7:
		return RiskHigh
	default:
		return RiskMedium
	}
}

// FraudAlert is the caller-supplied description of a flagged transaction.
type FraudAlert struct {
	TransactionID    string
	Amount           float64
	FraudProbability float64
	Category         *string
	Merchant         *string
	IsNighttime      *bool
}

func (a *FraudAlert) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: alert is required", ErrValidation)
	}
	if strings.TrimSpace(a.TransactionID) == "" {
		return fmt.Errorf("%w: transaction id is required", ErrValidation)
	}
	if a.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	if a.FraudProbability < 0 || a.FraudProbability > 1 {
		return fmt.Errorf("%w: fraud probability must be between 0 and 1", ErrValidation)
	}
	return nil
}

// RiskLevel returns the tier derived from the alert's fraud probability.
func (a *FraudAlert) RiskLevel() RiskLevel {
	return RiskLevelFor(a.FraudProbability)
}

// Notification is the persisted record tracking one alert's delivery
// lifecycle. Exactly one notification exists per transaction id, ever.
type Notification struct {
	ID               string
	TransactionID    string
	Amount           float64
	FraudProbability float64
	Category         *string
	Merchant         *string
	IsNighttime      *bool
	Status           Status
	MessageID        *string
	Content          *string
	Error            *string
	SentAt           *time.Time
	FailedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (n *Notification) Validate() error {
	if n == nil {
		return fmt.Errorf("%w: notification is required", ErrValidation)
	}
	if strings.TrimSpace(n.TransactionID) == "" {
		return fmt.Errorf("%w: transaction id is required", ErrValidation)
	}
	if n.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	if n.FraudProbability < 0 || n.FraudProbability > 1 {
		return fmt.Errorf("%w: fraud probability must be between 0 and 1", ErrValidation)
	}
	if !n.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, n.Status)
	}
	return nil
}
