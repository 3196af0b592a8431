package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
)

// Session is one live real-time connection owned by an authenticated user.
// Enqueue is non-blocking; it fails when the session's outbound buffer is
// full or the session is closing, and such failures are harmless because
// the client reconciles against the durable store on reconnect.
type Session interface {
	Enqueue(event domain.Event) error
}

// SessionRegistry is the fan-out lookup from an identity to its live
// sessions. The returned slice is a snapshot; it is empty for users with
// no open connections, which is the common case.
type SessionRegistry interface {
	SessionsFor(userID uuid.UUID) []Session
}

// Announcement is a business fact to be recorded and pushed. The caller
// is responsible for deduplicating RecipientIDs; the dispatcher persists
// one notification row per entry, in order.
type Announcement struct {
	RecipientIDs []uuid.UUID
	Title        string
	Message      string
	Type         domain.NotificationType
	Link         *string
}

// EventDispatcher is the single entry point between business mutations
// and the real-time layer.
type EventDispatcher interface {
	// Announce persists a notification row per recipient and then pushes
	// a notification event to each recipient's live sessions. It returns
	// an error only when a durable write fails; push failures are logged
	// and swallowed.
	Announce(ctx context.Context, ann Announcement) error

	// Push fans an ephemeral event out to the given recipients' live
	// sessions without touching the durable store.
	Push(ctx context.Context, eventType domain.EventType, recipientIDs []uuid.UUID, payload interface{})
}

// EventBridge relays event envelopes between server instances so that a
// mutation on one instance reaches connections held by another.
type EventBridge interface {
	Publish(ctx context.Context, envelope domain.EventEnvelope) error
}
