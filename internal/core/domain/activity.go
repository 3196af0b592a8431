package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an entry in a ticket's activity log.
type ActivityType string

const (
	ActivityTicketCreated   ActivityType = "TICKET_CREATED"
	ActivityCommentAdded    ActivityType = "COMMENT_ADDED"
	ActivityStatusChanged   ActivityType = "STATUS_CHANGED"
	ActivityPriorityChanged ActivityType = "PRIORITY_CHANGED"
	ActivityAssigneeChanged ActivityType = "ASSIGNEE_CHANGED"
)

// Activity is an audit entry recording who did what to a ticket.
type Activity struct {
	ID        int64        `json:"id"`
	TicketID  int64        `json:"ticketId"`
	ActorID   uuid.UUID    `json:"actorId"`
	Type      ActivityType `json:"type"`
	Detail    string       `json:"detail"`
	CreatedAt time.Time    `json:"createdAt"`
}
