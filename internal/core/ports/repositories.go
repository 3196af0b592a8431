package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
)

// ListTicketsRepoParams holds the filters a ticket listing query accepts.
type ListTicketsRepoParams struct {
	Limit      int32
	Offset     int32
	Status     *string
	Priority   *string
	CategoryID *int64
	CreatorID  *uuid.UUID
	AssigneeID *uuid.UUID
}

// UserRepository is the port for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListByRoles(ctx context.Context, roles []domain.Role) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) error
}

// TicketRepository is the port for ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	List(ctx context.Context, params ListTicketsRepoParams) ([]*domain.Ticket, error)
}

// CommentRepository is the port for comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Comment, error)
}

// CategoryRepository is the port for category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationRepository is the durable notification store. Rows are
// created by the event dispatcher and mutated only by their recipient.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
	MarkRead(ctx context.Context, id int64, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*domain.Notification, error)
}

// ActivityRepository is the port for the ticket activity log.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
	ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Activity, error)
}
