package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// TicketStatus represents the possible states of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "OPEN"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusResolved   TicketStatus = "RESOLVED"
	StatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

// ValidStatus reports whether the given string is a known status.
func ValidStatus(s string) bool {
	switch TicketStatus(s) {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether the given string is a known priority.
func ValidPriority(p string) bool {
	switch TicketPriority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Ticket is the core domain entity.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CategoryID  *int64
	CreatorID   uuid.UUID
	AssigneeID  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TicketParams holds the input for creating a ticket.
type TicketParams struct {
	Title       string
	Description string
	Priority    TicketPriority
	CategoryID  *int64
	CreatorID   uuid.UUID
	AssigneeID  *uuid.UUID
}

// NewTicket is a factory function to create a valid new ticket.
func NewTicket(params TicketParams) (*Ticket, error) {
	if params.Title == "" {
		return nil, apperrors.ErrTitleRequired
	}
	if len(params.Title) > MaxTitleLength {
		return nil, apperrors.ErrTitleTooLong
	}
	if len(params.Description) > MaxDescriptionLength {
		return nil, apperrors.ErrDescriptionTooLong
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(string(priority)) {
		return nil, apperrors.ErrInvalidPriority
	}

	return &Ticket{
		Title:       params.Title,
		Description: params.Description,
		Status:      StatusOpen,
		Priority:    priority,
		CategoryID:  params.CategoryID,
		CreatorID:   params.CreatorID,
		AssigneeID:  params.AssigneeID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// validTransitions defines the allowed status changes.
var validTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusClosed},
	StatusInProgress: {StatusOpen, StatusResolved, StatusClosed},
	StatusResolved:   {StatusOpen, StatusClosed},
	StatusClosed:     {},
}

// UpdateStatus changes the ticket's status, enforcing valid transitions.
func (t *Ticket) UpdateStatus(newStatus TicketStatus) error {
	allowed, ok := validTransitions[t.Status]
	if !ok {
		return apperrors.ErrInvalidStatusTransition
	}

	for _, s := range allowed {
		if s == newStatus {
			t.Status = newStatus
			t.touch()
			return nil
		}
	}

	return apperrors.ErrInvalidStatusTransition
}

// UpdatePriority changes the ticket's priority.
func (t *Ticket) UpdatePriority(priority TicketPriority) error {
	if !ValidPriority(string(priority)) {
		return apperrors.ErrInvalidPriority
	}
	t.Priority = priority
	t.touch()
	return nil
}

// Assign sets or changes the assignee of the ticket.
func (t *Ticket) Assign(assigneeID uuid.UUID) error {
	if t.Status == StatusClosed {
		return apperrors.ErrCannotAssignClosed
	}
	t.AssigneeID = &assigneeID
	t.touch()
	return nil
}

// IsOwnedBy reports whether the given user created this ticket.
func (t *Ticket) IsOwnedBy(userID uuid.UUID) bool {
	return t.CreatorID == userID
}

// IsAssignedTo reports whether the given user is the current assignee.
func (t *Ticket) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

func (t *Ticket) touch() {
	now := time.Now().UTC()
	t.UpdatedAt = &now
}
