package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this fraction of the pong wait. Must be
	// less than the pong wait itself.
	pingFraction = 9.0 / 10.0

	// Maximum message size allowed from peer. Clients only speak the
	// transport-level protocol; application data flows server to client.
	maxMessageSize = 512
)

var (
	// ErrSessionClosed is returned by Enqueue after the session started
	// shutting down.
	ErrSessionClosed = errors.New("session closed")

	// ErrSendBufferFull is returned by Enqueue when the client cannot
	// keep up with its outbound event stream.
	ErrSendBufferFull = errors.New("session send buffer full")
)

// Client is one live WebSocket session for an authenticated user. Its
// lifetime is owned by the session handler: created on a successful
// handshake, destroyed on any close, and deregistered on the same code
// path regardless of the close reason.
type Client struct {
	ConnectionID uuid.UUID
	UserID       uuid.UUID
	Role         domain.Role
	ConnectedAt  time.Time

	conn     *websocket.Conn
	registry *Registry
	send     chan domain.Event
	done     chan struct{}
	closing  sync.Once
	pongWait time.Duration
	logger   *slog.Logger
}

var _ ports.Session = (*Client)(nil)

// NewClient wraps an upgraded connection for the given identity.
func NewClient(conn *websocket.Conn, userID uuid.UUID, role domain.Role, registry *Registry, sendBuffer int, pongWait time.Duration, logger *slog.Logger) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	connectionID := uuid.New()
	return &Client{
		ConnectionID: connectionID,
		UserID:       userID,
		Role:         role,
		ConnectedAt:  time.Now().UTC(),
		conn:         conn,
		registry:     registry,
		send:         make(chan domain.Event, sendBuffer),
		done:         make(chan struct{}),
		pongWait:     pongWait,
		logger: logger.With(
			"user_id", userID.String(),
			"connection_id", connectionID.String(),
		),
	}
}

// Enqueue queues an event for delivery to this session without blocking.
// A full buffer or a closing session yields an error; callers treat both
// as a transient push failure.
func (c *Client) Enqueue(event domain.Event) error {
	select {
	case <-c.done:
		return ErrSessionClosed
	default:
	}

	select {
	case c.send <- event:
		return nil
	case <-c.done:
		return ErrSessionClosed
	default:
		return ErrSendBufferFull
	}
}

// shutdown tears the session down exactly once. Safe to call from any
// goroutine and from multiple close paths.
func (c *Client) shutdown() {
	c.closing.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// ReadPump consumes the connection until it dies. It exists to process
// control frames (pong, close) and enforce liveness; clients send no
// application messages. Deregistration happens in the deferred cleanup,
// so every exit path - client close, network error, failed pong - runs
// the same teardown.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Deregister(c)
		c.shutdown()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Inbound application messages are ignored; the client talks to
		// the server over REST.
	}
}

// WritePump drains the send queue to the connection and keeps the peer
// alive with periodic pings.
func (c *Client) WritePump() {
	pingPeriod := time.Duration(float64(c.pongWait) * pingFraction)
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case event := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}
			if err := c.writeJSON(event); err != nil {
				c.logger.Debug("failed to write event", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}
