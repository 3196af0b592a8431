package http

import (
	"log/slog"
	"net/http"

	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// MeHandler returns the authenticated user's own account.
type MeHandler struct {
	userRepo     ports.UserRepository
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMeHandler creates a new me handler
func NewMeHandler(
	userRepo ports.UserRepository,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MeHandler {
	return &MeHandler{
		userRepo:     userRepo,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "me"),
	}
}

// HandleGetMe handles GET /me
func (h *MeHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toUserDTO(user))
}
