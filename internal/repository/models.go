package repository

import (
	"time"

	"github.com/Youhorng/notify-service/internal/domain"
)

// NotificationModel is the persistence model for the notifications table.
type NotificationModel struct {
	ID               string        `gorm:"type:uuid;primaryKey"`
	TransactionID    string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_notifications_transaction_id"`
	Amount           float64       `gorm:"type:numeric(14,2);not null"`
	FraudProbability float64       `gorm:"type:numeric(6,5);not null"`
	Category         *string       `gorm:"type:varchar(255)"`
	Merchant         *string       `gorm:"type:varchar(255)"`
	IsNighttime      *bool
	Status           domain.Status `gorm:"type:varchar(10);not null"`
	MessageID        *string       `gorm:"type:varchar(255)"`
	Content          *string       `gorm:"type:text"`
	Error            *string       `gorm:"type:text"`
	SentAt           *time.Time
	FailedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}

	return &NotificationModel{
		ID:               n.ID,
		TransactionID:    n.TransactionID,
		Amount:           n.Amount,
		FraudProbability: n.FraudProbability,
		Category:         n.Category,
		Merchant:         n.Merchant,
		IsNighttime:      n.IsNighttime,
		Status:           n.Status,
		MessageID:        n.MessageID,
		Content:          n.Content,
		Error:            n.Error,
		SentAt:           n.SentAt,
		FailedAt:         n.FailedAt,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:               m.ID,
		TransactionID:    m.TransactionID,
		Amount:           m.Amount,
		FraudProbability: m.FraudProbability,
		Category:         m.Category,
		Merchant:         m.Merchant,
		IsNighttime:      m.IsNighttime,
		Status:           m.Status,
		MessageID:        m.MessageID,
		Content:          m.Content,
		Error:            m.Error,
		SentAt:           m.SentAt,
		FailedAt:         m.FailedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
