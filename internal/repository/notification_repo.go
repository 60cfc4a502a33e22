package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Youhorng/notify-service/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByTransactionID(ctx context.Context, txnID string) (*domain.Notification, error)
	Find(ctx context.Context, key domain.LookupKey) (*domain.Notification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time, messageID, content string) error
	MarkFailed(ctx context.Context, id string, failedAt time.Time, cause string) error
	List(ctx context.Context, page, pageSize int) ([]domain.Notification, int64, error)
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

func (r *GormNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	model := notificationModelFromDomain(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if n != nil {
		*n = *notificationModelToDomain(model)
	}
	return nil
}

func (r *GormNotificationRepo) GetByTransactionID(ctx context.Context, txnID string) (*domain.Notification, error) {
	var model NotificationModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", txnID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return notificationModelToDomain(&model), nil
}

// Find resolves a tagged lookup key. Record-id lookups fall back to the
// transaction id on a miss, since callers may hold either identifier.
func (r *GormNotificationRepo) Find(ctx context.Context, key domain.LookupKey) (*domain.Notification, error) {
	if key.Kind == domain.LookupByRecordID {
		var model NotificationModel
		err := r.db.WithContext(ctx).First(&model, "id = ?", key.Value).Error
		if err == nil {
			return notificationModelToDomain(&model), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return r.GetByTransactionID(ctx, key.Value)
}

// MarkSent records the successful terminal state. The pending guard keeps
// terminal records immutable; zero rows affected means the record is
// missing or already terminal.
func (r *GormNotificationRepo) MarkSent(ctx context.Context, id string, sentAt time.Time, messageID, content string) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":     domain.StatusSent,
			"sent_at":    sentAt,
			"message_id": messageID,
			"content":    content,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.terminalUpdateMissError(ctx, id)
	}
	return nil
}

// MarkFailed records the failed terminal state with the delivery error.
func (r *GormNotificationRepo) MarkFailed(ctx context.Context, id string, failedAt time.Time, cause string) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":    domain.StatusFailed,
			"failed_at": failedAt,
			"error":     cause,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.terminalUpdateMissError(ctx, id)
	}
	return nil
}

func (r *GormNotificationRepo) terminalUpdateMissError(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// List returns a newest-first page of notifications plus the total count.
func (r *GormNotificationRepo) List(ctx context.Context, page, pageSize int) ([]domain.Notification, int64, error) {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	notifications := make([]domain.Notification, 0, len(models))
	for i := range models {
		notifications = append(notifications, *notificationModelToDomain(&models[i]))
	}

	return notifications, total, nil
}
