package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Youhorng/notify-service/internal/channel"
	"github.com/Youhorng/notify-service/internal/domain"
	"github.com/Youhorng/notify-service/internal/events"
	"github.com/Youhorng/notify-service/internal/format"
	"github.com/Youhorng/notify-service/internal/observability"
	"github.com/Youhorng/notify-service/internal/ratelimit"
	"github.com/Youhorng/notify-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Lifecycle events are telemetry; a broker outage must not stall the
// submission path, so every publish carries its own deadline.
const lifecyclePublishTimeout = 3 * time.Second

// NotificationService drives the pending -> sent/failed lifecycle: it owns
// the idempotency check, the pending insert, the single delivery attempt,
// and the terminal status update.
type NotificationService struct {
	notifications  repository.NotificationRepository
	channel        channel.Channel
	rateLimiter    ratelimit.RateLimiter
	publisher      events.Publisher
	metrics        *observability.Metrics
	logger         *zap.Logger
	now            func() time.Time
	publishTimeout time.Duration
}

// SubmitResult is the structured outcome returned to the caller. A failed
// delivery yields Success=false with no Go error: the request itself was
// processed and the record is queryable in failed state.
type SubmitResult struct {
	Success        bool
	Message        string
	NotificationID string
	Status         domain.Status
	AlreadyExists  bool
	Error          *string
}

// Page is one page of notifications ordered newest-first.
type Page struct {
	Notifications []domain.Notification
	Total         int64
	Page          int
	Limit         int
	Pages         int64
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	deliveryChannel channel.Channel,
	logger *zap.Logger,
) (*NotificationService, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if deliveryChannel == nil {
		return nil, fmt.Errorf("delivery channel is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NotificationService{
		notifications:  notifications,
		channel:        deliveryChannel,
		publisher:      events.NoopPublisher{},
		logger:         logger,
		now:            time.Now,
		publishTimeout: lifecyclePublishTimeout,
	}, nil
}

// SetRateLimiter wires an optional delivery rate limiter.
func (s *NotificationService) SetRateLimiter(limiter ratelimit.RateLimiter) {
	if s == nil {
		return
	}
	s.rateLimiter = limiter
}

// SetEventPublisher wires an optional lifecycle event publisher.
func (s *NotificationService) SetEventPublisher(publisher events.Publisher) {
	if s == nil || publisher == nil {
		return
	}
	s.publisher = publisher
}

func (s *NotificationService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Submit records a fraud alert and attempts delivery exactly once.
// Resubmitting a known transaction id returns the existing notification
// without side effects.
func (s *NotificationService) Submit(ctx context.Context, alert domain.FraudAlert) (*SubmitResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	alert.TransactionID = strings.TrimSpace(alert.TransactionID)
	if err := alert.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.notifications.GetByTransactionID(ctx, alert.TransactionID)
	if err == nil {
		s.metrics.IncDuplicateSubmission()
		return existingResult(existing), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing notification: %w", err)
	}

	notification := &domain.Notification{
		ID:               uuid.NewString(),
		TransactionID:    alert.TransactionID,
		Amount:           alert.Amount,
		FraudProbability: alert.FraudProbability,
		Category:         alert.Category,
		Merchant:         alert.Merchant,
		IsNighttime:      alert.IsNighttime,
		Status:           domain.StatusPending,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		resolved, resolveErr := s.resolveDuplicateSubmission(ctx, err, alert.TransactionID)
		if resolveErr != nil {
			return nil, resolveErr
		}
		if resolved != nil {
			s.metrics.IncDuplicateSubmission()
			return existingResult(resolved), nil
		}
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	s.metrics.IncAlertRecorded(alert.RiskLevel().String())

	content := format.Alert(alert, s.now())
	s.waitForRateLimit(ctx)

	sendStart := s.now()
	result, deliverErr := s.channel.Deliver(ctx, content)
	s.metrics.ObserveDeliveryDuration(s.channel.Name(), s.now().Sub(sendStart))

	if deliverErr == nil && result != nil {
		return s.finishSent(ctx, notification, result), nil
	}

	cause := "delivery channel returned no result"
	if deliverErr != nil {
		cause = deliverErr.Error()
	}
	return s.finishFailed(ctx, notification, cause), nil
}

// GetStatus resolves one notification by record id or transaction id.
func (s *NotificationService) GetStatus(ctx context.Context, key domain.LookupKey) (*domain.Notification, error) {
	if strings.TrimSpace(key.Value) == "" {
		return nil, fmt.Errorf("%w: identifier is required", domain.ErrValidation)
	}
	return s.notifications.Find(ctx, key)
}

// List returns a newest-first page. Pages beyond the end yield an empty
// page, not an error.
func (s *NotificationService) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1", domain.ErrValidation)
	}

	notifications, total, err := s.notifications.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return &Page{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		Limit:         limit,
		Pages:         (total + int64(limit) - 1) / int64(limit),
	}, nil
}

func (s *NotificationService) finishSent(ctx context.Context, n *domain.Notification, result *channel.Result) *SubmitResult {
	sentAt := s.now().UTC()

	if err := s.notifications.MarkSent(ctx, n.ID, sentAt, result.MessageID, result.Content); err != nil {
		// The delivery happened; the persisted record may lag behind the
		// reported status. Known consistency gap.
		s.logger.Error("failed to mark notification as sent",
			zap.String("notificationId", n.ID),
			zap.String("transactionId", n.TransactionID),
			zap.Error(err),
		)
	}

	s.metrics.IncDelivery(s.channel.Name(), true)
	s.publishLifecycleEvent(ctx, n, domain.StatusSent, sentAt)

	s.logger.Info("notification sent",
		zap.String("notificationId", n.ID),
		zap.String("transactionId", n.TransactionID),
		zap.String("messageId", result.MessageID),
	)

	return &SubmitResult{
		Success:        true,
		Message:        "Notification sent successfully.",
		NotificationID: n.ID,
		Status:         domain.StatusSent,
	}
}

func (s *NotificationService) finishFailed(ctx context.Context, n *domain.Notification, cause string) *SubmitResult {
	failedAt := s.now().UTC()

	if err := s.notifications.MarkFailed(ctx, n.ID, failedAt, cause); err != nil {
		s.logger.Error("failed to mark notification as failed",
			zap.String("notificationId", n.ID),
			zap.String("transactionId", n.TransactionID),
			zap.Error(err),
		)
	}

	s.metrics.IncDelivery(s.channel.Name(), false)
	s.publishLifecycleEvent(ctx, n, domain.StatusFailed, failedAt)

	s.logger.Warn("notification delivery failed",
		zap.String("notificationId", n.ID),
		zap.String("transactionId", n.TransactionID),
		zap.String("cause", cause),
	)

	return &SubmitResult{
		Success:        false,
		Message:        "Failed to send notification.",
		NotificationID: n.ID,
		Status:         domain.StatusFailed,
		Error:          &cause,
	}
}

// resolveDuplicateSubmission converts a unique-constraint violation on
// transaction_id into the existing record; the store constraint is the
// sole arbiter of concurrent first-time submissions.
func (s *NotificationService) resolveDuplicateSubmission(
	ctx context.Context,
	createErr error,
	txnID string,
) (*domain.Notification, error) {
	if !isUniqueViolationError(createErr) {
		return nil, nil
	}

	existing, err := s.notifications.GetByTransactionID(ctx, txnID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing notification after duplicate insert: %w", err)
	}

	s.logger.Info("duplicate submission resolved",
		zap.String("existingId", existing.ID),
		zap.String("transactionId", txnID),
	)
	return existing, nil
}

func (s *NotificationService) waitForRateLimit(ctx context.Context) {
	if s.rateLimiter == nil {
		return
	}

	// The limiter is protective only; an unreachable Redis must not block
	// alert delivery.
	if err := s.rateLimiter.Wait(ctx); err != nil {
		s.logger.Warn("rate limiter unavailable, proceeding",
			zap.String("channel", s.channel.Name()),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) publishLifecycleEvent(ctx context.Context, n *domain.Notification, status domain.Status, occurredAt time.Time) {
	event := events.AlertEvent{
		NotificationID: n.ID,
		TransactionID:  n.TransactionID,
		Status:         status,
		RiskLevel:      domain.RiskLevelFor(n.FraudProbability),
		OccurredAt:     occurredAt,
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, event); err != nil {
		s.logger.Warn("failed to publish lifecycle event",
			zap.String("notificationId", n.ID),
			zap.String("status", status.String()),
			zap.Error(err),
		)
	}
}

func existingResult(n *domain.Notification) *SubmitResult {
	return &SubmitResult{
		Success:        true,
		Message:        "Notification already exists for this transaction.",
		NotificationID: n.ID,
		Status:         n.Status,
		AlreadyExists:  true,
	}
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
