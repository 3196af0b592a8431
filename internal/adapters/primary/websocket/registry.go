package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// Registry is the in-memory mapping from an authenticated identity to its
// live connections. A single user can have multiple connections (multiple
// tabs/devices). It holds no durable state: a process restart clears it,
// and clients recover by re-fetching the notification store on reconnect.
//
// The registry is constructed once at startup and injected into the
// session handler and the event dispatcher; all access goes through the
// mutex because registrations and fan-out lookups run on different
// goroutines.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Client]struct{}
	logger   *slog.Logger
}

// Ensure Registry implements the fan-out lookup port.
var _ ports.SessionRegistry = (*Registry)(nil)

// NewRegistry creates an empty connection registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]map[*Client]struct{}),
		logger:   logger.With("component", "connection_registry"),
	}
}

// Register adds a client under its owner. Registering the same client
// twice is a no-op.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[client.UserID] == nil {
		r.sessions[client.UserID] = make(map[*Client]struct{})
	}
	r.sessions[client.UserID][client] = struct{}{}

	r.logger.Info("session registered",
		"user_id", client.UserID,
		"connection_id", client.ConnectionID,
		"total_sessions", len(r.sessions[client.UserID]),
	)
}

// Deregister removes a client from its owner's set. It is a no-op when
// the client is already gone, which tolerates the race between an
// explicit disconnect and a liveness-triggered one.
func (r *Registry) Deregister(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned, ok := r.sessions[client.UserID]
	if !ok {
		return
	}
	if _, exists := owned[client]; !exists {
		return
	}

	delete(owned, client)
	if len(owned) == 0 {
		delete(r.sessions, client.UserID)
	}

	r.logger.Info("session deregistered",
		"user_id", client.UserID,
		"connection_id", client.ConnectionID,
	)
}

// SessionsFor returns a snapshot of the user's live sessions. The empty
// slice is the common case: most recipients of most events are offline.
func (r *Registry) SessionsFor(userID uuid.UUID) []ports.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned, ok := r.sessions[userID]
	if !ok {
		return nil
	}

	snapshot := make([]ports.Session, 0, len(owned))
	for client := range owned {
		snapshot = append(snapshot, client)
	}
	return snapshot
}

// IsUserConnected reports whether a user has any live session.
func (r *Registry) IsUserConnected(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions[userID]) > 0
}

// ConnectionCount returns the total number of live sessions.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, owned := range r.sessions {
		count += len(owned)
	}
	return count
}
