package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies what a notification is about. The values
// double as the client-side translation keys.
type NotificationType string

const (
	NotificationTicketAssigned NotificationType = "TICKET_ASSIGNED"
	NotificationCommentAdded   NotificationType = "COMMENT_ADDED"
	NotificationStatusChanged  NotificationType = "STATUS_CHANGED"
)

// Notification is the durable record of an event for one recipient.
// It is created exactly once per (event, recipient) pair and only ever
// mutated by the recipient marking it read. Durability lives here; the
// push delivery of the same event is best-effort.
type Notification struct {
	ID          int64            `json:"id"`
	RecipientID uuid.UUID        `json:"recipientId"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	Link        *string          `json:"link,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
}
