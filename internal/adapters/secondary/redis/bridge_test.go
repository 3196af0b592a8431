package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

type recordingSession struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSession) Enqueue(event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSession) received() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event{}, s.events...)
}

type staticRegistry struct {
	sessions map[uuid.UUID][]ports.Session
}

func (r *staticRegistry) SessionsFor(userID uuid.UUID) []ports.Session {
	return r.sessions[userID]
}

func newTestBridge(t *testing.T, registry ports.SessionRegistry) *Bridge {
	t.Helper()
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBridge(client, "helpdesk:events", registry, logger)
}

func TestBridge_RelaysEnvelopeToLocalSessions(t *testing.T) {
	recipient := uuid.New()
	session := &recordingSession{}
	registry := &staticRegistry{sessions: map[uuid.UUID][]ports.Session{
		recipient: {session},
	}}
	bridge := newTestBridge(t, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx, "local-instance")

	// Give the subscriber a moment to attach before publishing.
	require.Eventually(t, func() bool {
		err := bridge.Publish(context.Background(), domain.EventEnvelope{
			Origin:       "remote-instance",
			Type:         domain.EventTicketUpdated,
			RecipientIDs: []uuid.UUID{recipient},
			Payload:      map[string]interface{}{"id": 7},
		})
		return err == nil && len(session.received()) > 0
	}, 3*time.Second, 50*time.Millisecond)

	events := session.received()
	assert.Equal(t, domain.EventTicketUpdated, events[0].Type)

	var payload struct {
		ID int64 `json:"id"`
	}
	raw, ok := events[0].Payload.(json.RawMessage)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, int64(7), payload.ID)
}

func TestBridge_SkipsOwnEnvelopes(t *testing.T) {
	recipient := uuid.New()
	session := &recordingSession{}
	registry := &staticRegistry{sessions: map[uuid.UUID][]ports.Session{
		recipient: {session},
	}}
	bridge := newTestBridge(t, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx, "local-instance")
	time.Sleep(100 * time.Millisecond)

	err := bridge.Publish(context.Background(), domain.EventEnvelope{
		Origin:       "local-instance",
		Type:         domain.EventCommentAdded,
		RecipientIDs: []uuid.UUID{recipient},
	})
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, session.received())
}

func TestBridge_IgnoresMalformedMessages(t *testing.T) {
	recipient := uuid.New()
	session := &recordingSession{}
	registry := &staticRegistry{sessions: map[uuid.UUID][]ports.Session{
		recipient: {session},
	}}

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bridge := NewBridge(client, "helpdesk:events", registry, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx, "local-instance")
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, client.Publish(context.Background(), "helpdesk:events", "not json").Err())

	// A good envelope after the bad one still gets through.
	require.Eventually(t, func() bool {
		err := bridge.Publish(context.Background(), domain.EventEnvelope{
			Origin:       "remote-instance",
			Type:         domain.EventNotification,
			RecipientIDs: []uuid.UUID{recipient},
		})
		return err == nil && len(session.received()) > 0
	}, 3*time.Second, 50*time.Millisecond)
}
