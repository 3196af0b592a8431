package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// NotificationRepository is the durable notification store backing the
// client reconciliation contract. Rows only ever change by their
// recipient flipping the read flag; every mutation is scoped by
// recipient_id so the row's owner is the only possible writer.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) ports.NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = "id, recipient_id, title, message, type, link, read, created_at"

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var notificationType string
	err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &notificationType, &n.Link, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(notificationType)
	return &n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, title, message, type, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns,
		notification.RecipientID, notification.Title, notification.Message,
		string(notification.Type), notification.Link,
	)
	return scanNotification(row)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, recipientID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE recipient_id = $1 AND read = FALSE`,
		recipientID,
	)
	return err
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		recipientID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}
