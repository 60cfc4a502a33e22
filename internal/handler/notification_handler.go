package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Youhorng/notify-service/internal/domain"
	"github.com/Youhorng/notify-service/internal/service"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 100
)

type NotificationService interface {
	Submit(ctx context.Context, alert domain.FraudAlert) (*service.SubmitResult, error)
	GetStatus(ctx context.Context, key domain.LookupKey) (*domain.Notification, error)
	List(ctx context.Context, page, limit int) (*service.Page, error)
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) (*NotificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	return &NotificationHandler{service: service}, nil
}

func RegisterNotificationRoutes(router fiber.Router, service NotificationService) error {
	h, err := NewNotificationHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/notifications/send", h.SendNotification)
	v1.Get("/notifications/:id", h.GetNotification)
	v1.Get("/notifications", h.ListNotifications)

	return nil
}

type sendNotificationRequest struct {
	TransactionID    string  `json:"transactionId"`
	Amount           float64 `json:"amount"`
	FraudProbability float64 `json:"fraudProbability"`
	Category         *string `json:"category,omitempty"`
	Merchant         *string `json:"merchant,omitempty"`
	IsNighttime      *bool   `json:"isNighttime,omitempty"`
}

type sendNotificationResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	NotificationID string  `json:"notificationId"`
	Status         string  `json:"status"`
	Error          *string `json:"error,omitempty"`
}

type notificationResponse struct {
	ID               string     `json:"id"`
	TransactionID    string     `json:"transactionId"`
	Amount           float64    `json:"amount"`
	FraudProbability float64    `json:"fraudProbability"`
	Category         *string    `json:"category,omitempty"`
	Merchant         *string    `json:"merchant,omitempty"`
	IsNighttime      *bool      `json:"isNighttime,omitempty"`
	Status           string     `json:"status"`
	MessageID        *string    `json:"messageId,omitempty"`
	Error            *string    `json:"error,omitempty"`
	SentAt           *time.Time `json:"sentAt,omitempty"`
	FailedAt         *time.Time `json:"failedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type listNotificationsResponse struct {
	Success       bool                   `json:"success"`
	Notifications []notificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	Pages         int64                  `json:"pages"`
}

// SendNotification records a fraud alert and delivers it. A delivery
// failure is a processed request: the response carries success=false and
// the cause, with HTTP 200.
func (h *NotificationHandler) SendNotification(c *fiber.Ctx) error {
	var req sendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	alert := domain.FraudAlert{
		TransactionID:    strings.TrimSpace(req.TransactionID),
		Amount:           req.Amount,
		FraudProbability: req.FraudProbability,
		Category:         req.Category,
		Merchant:         req.Merchant,
		IsNighttime:      req.IsNighttime,
	}

	result, err := h.service.Submit(c.UserContext(), alert)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(sendNotificationResponse{
		Success:        result.Success,
		Message:        result.Message,
		NotificationID: result.NotificationID,
		Status:         result.Status.String(),
		Error:          result.Error,
	})
}

// GetNotification resolves the path parameter as a record id when it is a
// valid UUID, otherwise as a transaction id.
func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	key, err := domain.ParseLookupKey(c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}

	notification, err := h.service.GetStatus(c.UserContext(), key)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toNotificationResponse(notification))
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	page := c.QueryInt("page", defaultPage)
	limit := c.QueryInt("limit", defaultLimit)

	if page < 1 {
		return toHTTPError(fmt.Errorf("%w: page must be >= 1", domain.ErrValidation))
	}
	if limit < 1 || limit > maxLimit {
		return toHTTPError(fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxLimit))
	}

	result, err := h.service.List(c.UserContext(), page, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{
		Success:       true,
		Notifications: toNotificationResponses(result.Notifications),
		Total:         result.Total,
		Page:          result.Page,
		Limit:         result.Limit,
		Pages:         result.Pages,
	})
}

func toNotificationResponses(notifications []domain.Notification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		n := notification
		responses = append(responses, toNotificationResponse(&n))
	}
	return responses
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	if n == nil {
		return notificationResponse{}
	}

	return notificationResponse{
		ID:               n.ID,
		TransactionID:    n.TransactionID,
		Amount:           n.Amount,
		FraudProbability: n.FraudProbability,
		Category:         n.Category,
		Merchant:         n.Merchant,
		IsNighttime:      n.IsNighttime,
		Status:           n.Status.String(),
		MessageID:        n.MessageID,
		Error:            n.Error,
		SentAt:           n.SentAt,
		FailedAt:         n.FailedAt,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
