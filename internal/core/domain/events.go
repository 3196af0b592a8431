package domain

import "github.com/google/uuid"

// EventType defines the type of real-time event pushed to clients.
type EventType string

const (
	EventConnected     EventType = "connected"
	EventTicketCreated EventType = "ticket:created"
	EventTicketUpdated EventType = "ticket:updated"
	EventCommentAdded  EventType = "comment:added"
	EventNotification  EventType = "notification"
)

// Event is the payload sent over WebSocket. Events are ephemeral; their
// only durable trace is the Notification rows they may produce.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

// CommentAddedPayload is the payload shape for comment:added events.
type CommentAddedPayload struct {
	TicketID int64    `json:"ticketId"`
	Comment  *Comment `json:"comment"`
}

// EventEnvelope is the wire format used to relay an event between server
// instances. Recipients are resolved before publishing so the receiving
// instance only needs a registry lookup.
type EventEnvelope struct {
	Origin       string      `json:"origin"`
	Type         EventType   `json:"type"`
	RecipientIDs []uuid.UUID `json:"recipientIds"`
	Payload      interface{} `json:"payload"`
}
