package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationService exposes the durable notification store to the
// client reconciliation layer: on (re)connect, clients fetch this list
// as the source of truth and treat push events only as refresh hints.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
}

var _ ports.NotificationService = (*NotificationService)(nil)

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo ports.NotificationRepository) ports.NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListNotifications returns the recipient's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, recipientID uuid.UUID, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return s.notificationRepo.ListByRecipient(ctx, recipientID, limit)
}

// MarkRead flags one notification as read. The repository scopes the
// update to the recipient, so nobody can mutate another user's rows.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, recipientID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id, recipientID)
}

// MarkAllRead flags all of the recipient's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, recipientID)
}
