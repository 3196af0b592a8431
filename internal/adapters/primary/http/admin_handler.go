package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/adapters/primary/validation"
	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// AdminHandler handles admin-only user management endpoints.
type AdminHandler struct {
	adminService ports.AdminService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	adminService ports.AdminService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "admin"),
	}
}

// RegisterRoutes sets up the routing for the user management endpoints.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListUsers)
	r.Get("/assignable", h.HandleListAssignableUsers)
	r.Patch("/{userID}/role", h.HandleUpdateUserRole)
	r.Patch("/{userID}/status", h.HandleUpdateUserStatus)
}

// UpdateRoleRequest defines the expected JSON body for role changes
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Validate validates the update role request
func (r *UpdateRoleRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("role", r.Role).
		OneOf("role", r.Role, []string{"ADMIN", "AGENT", "USER"})

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateStatusRequest defines the expected JSON body for status changes
type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// HandleListUsers handles GET /users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), actor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toUserDTOs(users))
}

// HandleListAssignableUsers handles GET /users/assignable
func (h *AdminHandler) HandleListAssignableUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	users, err := h.adminService.ListAssignableUsers(r.Context(), actor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toUserDTOs(users))
}

// HandleUpdateUserRole handles PATCH /users/{userID}/role
func (h *AdminHandler) HandleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateRoleRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.adminService.UpdateUserRole(r.Context(), actor, userID, domain.Role(req.Role)); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user role updated", "user_id", userID, "role", req.Role, "actor_id", actor.ID)
	WriteNoContent(w)
}

// HandleUpdateUserStatus handles PATCH /users/{userID}/status
func (h *AdminHandler) HandleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if req.IsActive == nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(nil, "isActive is required"))
		return
	}

	if err := h.adminService.UpdateUserStatus(r.Context(), actor, userID, *req.IsActive); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user status updated", "user_id", userID, "is_active", *req.IsActive, "actor_id", actor.ID)
	WriteNoContent(w)
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "userID")
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequestError(err, "User ID must be a valid UUID")
	}
	return userID, nil
}
