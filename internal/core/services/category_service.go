package services

import (
	"context"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// CategoryService implements category management. Mutations are
// admin-only; listing is open to every authenticated user.
type CategoryService struct {
	categoryRepo ports.CategoryRepository
}

var _ ports.CategoryService = (*CategoryService)(nil)

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo ports.CategoryRepository) ports.CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string, actor ports.Actor) (*domain.Category, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	category, err := domain.NewCategory(name)
	if err != nil {
		return nil, err
	}

	return s.categoryRepo.Create(ctx, category)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, name string, actor ports.Actor) (*domain.Category, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	if name == "" {
		return nil, apperrors.ErrCategoryNameRequired
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	return s.categoryRepo.Update(ctx, category)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id int64, actor ports.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.ErrForbidden
	}
	return s.categoryRepo.Delete(ctx, id)
}
