package domain

import (
	"time"

	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
)

const MaxCategoryNameLength = 100

// Category groups tickets for filtering and reporting.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// NewCategory is a factory function to create a valid new category.
func NewCategory(name string) (*Category, error) {
	if name == "" {
		return nil, apperrors.ErrCategoryNameRequired
	}

	return &Category{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}
