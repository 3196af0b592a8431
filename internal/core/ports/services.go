package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
)

// Actor identifies the authenticated principal performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// CreateTicketParams defines the required input for creating a new ticket.
type CreateTicketParams struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CategoryID  *int64
	AssigneeID  *uuid.UUID
	Actor       Actor
}

// UpdateTicketParams defines the input for mutating a ticket. Nil fields
// are left unchanged.
type UpdateTicketParams struct {
	TicketID   int64
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssigneeID *uuid.UUID
	Actor      Actor
}

// ListTicketsParams defines the input for listing tickets.
type ListTicketsParams struct {
	Actor        Actor
	Limit        int
	Offset       int
	Status       *string
	Priority     *string
	CategoryID   *int64
	AssignedToMe bool
	CreatedByMe  bool
}

// CreateCommentParams defines the input for creating a comment.
type CreateCommentParams struct {
	TicketID int64
	Body     string
	Actor    Actor
}

// TicketService defines the core business operations for managing tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, ticketID int64, actor Actor) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, params UpdateTicketParams) (*domain.Ticket, error)
	ListTickets(ctx context.Context, params ListTicketsParams) ([]*domain.Ticket, error)
	ListActivity(ctx context.Context, ticketID int64, actor Actor) ([]*domain.Activity, error)
}

// CommentService defines the port for comment-related business logic.
type CommentService interface {
	CreateComment(ctx context.Context, params CreateCommentParams) (*domain.Comment, error)
	ListComments(ctx context.Context, ticketID int64, actor Actor) ([]*domain.Comment, error)
}

// NotificationService exposes the durable notification store to the
// client reconciliation layer. All operations are scoped to the actor's
// own notifications.
type NotificationService interface {
	ListNotifications(ctx context.Context, recipientID uuid.UUID, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id int64, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
}

// CategoryService defines the port for category management.
type CategoryService interface {
	CreateCategory(ctx context.Context, name string, actor Actor) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string, actor Actor) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64, actor Actor) error
}

// AdminService defines the port for admin-only user management.
type AdminService interface {
	ListUsers(ctx context.Context, actor Actor) ([]*domain.User, error)
	ListAssignableUsers(ctx context.Context, actor Actor) ([]*domain.User, error)
	UpdateUserRole(ctx context.Context, actor Actor, userID uuid.UUID, role domain.Role) error
	UpdateUserStatus(ctx context.Context, actor Actor, userID uuid.UUID, isActive bool) error
}

// NotificationParams defines the input for sending an email notification.
type NotificationParams struct {
	RecipientUserID uuid.UUID
	Subject         string
	Message         string
	TicketID        int64
}

// Notifier defines the port for sending asynchronous email notifications.
// Delivery is an external collaborator; implementations must not block
// the calling mutation.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}
