package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// AdminService implements admin-only user management.
type AdminService struct {
	userRepo ports.UserRepository
}

var _ ports.AdminService = (*AdminService)(nil)

// NewAdminService creates a new admin service.
func NewAdminService(userRepo ports.UserRepository) ports.AdminService {
	return &AdminService{userRepo: userRepo}
}

// ListUsers returns every account. Admin only.
func (s *AdminService) ListUsers(ctx context.Context, actor ports.Actor) ([]*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	return s.userRepo.List(ctx)
}

// ListAssignableUsers returns active admins and agents, the accounts a
// ticket may be assigned to. Available to admins and agents.
func (s *AdminService) ListAssignableUsers(ctx context.Context, actor ports.Actor) ([]*domain.User, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleAgent {
		return nil, apperrors.ErrForbidden
	}

	users, err := s.userRepo.ListByRoles(ctx, []domain.Role{domain.RoleAdmin, domain.RoleAgent})
	if err != nil {
		return nil, err
	}

	assignable := make([]*domain.User, 0, len(users))
	for _, user := range users {
		if user.IsActive {
			assignable = append(assignable, user)
		}
	}
	return assignable, nil
}

// UpdateUserRole changes an account's role. Admins cannot demote
// themselves, which keeps at least one admin reachable.
func (s *AdminService) UpdateUserRole(ctx context.Context, actor ports.Actor, userID uuid.UUID, role domain.Role) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.ErrForbidden
	}
	if !domain.ValidRole(string(role)) {
		return apperrors.ErrInvalidRole
	}
	if actor.ID == userID {
		return apperrors.ErrForbidden
	}
	return s.userRepo.UpdateRole(ctx, userID, role)
}

// UpdateUserStatus activates or deactivates an account.
func (s *AdminService) UpdateUserStatus(ctx context.Context, actor ports.Actor, userID uuid.UUID, isActive bool) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.ErrForbidden
	}
	if actor.ID == userID {
		return apperrors.ErrForbidden
	}
	return s.userRepo.UpdateActive(ctx, userID, isActive)
}
