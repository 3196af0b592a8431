package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lusodesk/helpdesk-backend/internal/adapters/primary/validation"
	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// NotificationHandler exposes the durable notification store. The list
// endpoint is the authoritative read clients reconcile against after a
// connect or reconnect; push events merely hint that this list changed.
type NotificationHandler struct {
	notificationService ports.NotificationService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	notificationService ports.NotificationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "notification"),
	}
}

// RegisterRoutes sets up the routing for the notification endpoints.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListNotifications)
	r.Patch("/read-all", h.HandleMarkAllRead)
	r.Patch("/{notificationID}/read", h.HandleMarkRead)
}

// NotificationDTO defines the JSON response for notifications.
type NotificationDTO struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	Link      *string `json:"link,omitempty"`
	Read      bool    `json:"read"`
	CreatedAt string  `json:"createdAt"`
}

func toNotificationDTO(notification *domain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        notification.ID,
		Title:     notification.Title,
		Message:   notification.Message,
		Type:      string(notification.Type),
		Link:      notification.Link,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt.Format(time.RFC3339),
	}
}

// HandleListNotifications handles GET /notifications
func (h *NotificationHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	limit := validation.ParseIntQueryParam(r, "limit", 20)

	notifications, err := h.notificationService.ListNotifications(r.Context(), actor.ID, limit)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]NotificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		response = append(response, toNotificationDTO(notification))
	}
	WriteList(w, response)
}

// HandleMarkRead handles PATCH /notifications/{notificationID}/read
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "notificationID")
	notificationID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || notificationID <= 0 {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Notification ID must be a positive integer"))
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, actor.ID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

// HandleMarkAllRead handles PATCH /notifications/read-all
func (h *NotificationHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), actor.ID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}
