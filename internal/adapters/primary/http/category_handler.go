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

// CategoryHandler handles HTTP requests for ticket categories.
type CategoryHandler struct {
	categoryService ports.CategoryService
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(
	categoryService ports.CategoryService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "category"),
	}
}

// RegisterRoutes sets up the routing for the category endpoints.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListCategories)
	r.Post("/", h.HandleCreateCategory)
	r.Put("/{categoryID}", h.HandleUpdateCategory)
	r.Delete("/{categoryID}", h.HandleDeleteCategory)
}

// CategoryRequest defines the expected JSON body for category mutations
type CategoryRequest struct {
	Name string `json:"name"`
}

// Validate validates the category request
func (r *CategoryRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxCategoryNameLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// CategoryDTO defines the JSON response for categories.
type CategoryDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func toCategoryDTO(category *domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
	}
}

// HandleListCategories handles GET /categories
func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryDTO(category))
	}
	WriteList(w, response)
}

// HandleCreateCategory handles POST /categories
func (h *CategoryHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CategoryRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), req.Name, actor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, toCategoryDTO(category))
}

// HandleUpdateCategory handles PUT /categories/{categoryID}
func (h *CategoryHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	categoryID, err := parseCategoryID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CategoryRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), categoryID, req.Name, actor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toCategoryDTO(category))
}

// HandleDeleteCategory handles DELETE /categories/{categoryID}
func (h *CategoryHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	categoryID, err := parseCategoryID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), categoryID, actor); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

func parseCategoryID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "categoryID")
	categoryID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || categoryID <= 0 {
		return 0, apperrors.NewBadRequestError(err, "Category ID must be a positive integer")
	}
	return categoryID, nil
}
