package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/lusodesk/helpdesk-backend/internal/auth"
	"github.com/lusodesk/helpdesk-backend/internal/config"
	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
)

// ConnectedPayload is the first event every session receives after the
// handshake. Clients use it to confirm identity and then fetch their
// notification list over REST before trusting any push.
type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
}

// Handler upgrades authenticated HTTP requests into WebSocket sessions.
// Browsers cannot set an Authorization header on the WebSocket handshake,
// so the access token travels in the token query parameter instead.
type Handler struct {
	tokenManager *auth.TokenManager
	registry     *Registry
	cfg          config.WebSocketConfig
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewHandler creates a WebSocket handler bound to the given registry.
func NewHandler(tokenManager *auth.TokenManager, registry *Registry, cfg config.WebSocketConfig, allowAllOrigins bool, logger *slog.Logger) *Handler {
	h := &Handler{
		tokenManager: tokenManager,
		registry:     registry,
		cfg:          cfg,
		logger:       logger.With("handler", "websocket"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		HandshakeTimeout: cfg.HandshakeTimeout,
		CheckOrigin:      originChecker(cfg.AllowedOrigins, allowAllOrigins),
	}
	return h
}

// ServeHTTP handles GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := h.tokenManager.ValidateToken(token)
	if err != nil {
		h.logger.Debug("websocket handshake rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", "error", err, "user_id", claims.UserID)
		return
	}

	client := NewClient(conn, claims.UserID, claims.Role, h.registry, h.cfg.SendBufferSize, h.cfg.PongWait, h.logger)
	h.registry.Register(client)

	h.logger.Info("websocket session opened",
		"user_id", claims.UserID,
		"connection_id", client.ConnectionID,
	)

	go client.WritePump()
	go client.ReadPump()

	// Greet the session so the client knows the transport is live and can
	// reconcile its notification state.
	_ = client.Enqueue(domain.Event{
		Type: domain.EventConnected,
		Payload: ConnectedPayload{
			ConnectionID: client.ConnectionID.String(),
			UserID:       claims.UserID.String(),
		},
	})
}

// originChecker builds the CheckOrigin function for the upgrader. An empty
// Origin header is accepted because non-browser clients do not send one.
// Entries like *.example.com match any subdomain.
func originChecker(allowed []string, allowAll bool) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := parsed.Hostname()

		for _, entry := range allowed {
			if entry == origin {
				return true
			}
			if suffix, ok := strings.CutPrefix(entry, "*."); ok {
				if host == suffix || strings.HasSuffix(host, "."+suffix) {
					return true
				}
			}
		}
		return false
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
