package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/mocks"
)

func TestAuthService_RegisterCreatesPlainUser(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ana@example.com" && u.Role == domain.RoleUser && u.IsActive
	})).Return(&domain.User{Email: "ana@example.com", Role: domain.RoleUser}, nil).Once()

	service := NewAuthService(userRepo)

	user, err := service.Register(context.Background(), "Ana Silva", "ana@example.com", "Str0ngPass")

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	userRepo.AssertExpectations(t)
}

func TestAuthService_RegisterRejectsWeakPassword(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	service := NewAuthService(userRepo)

	_, err := service.Register(context.Background(), "Ana Silva", "ana@example.com", "short")

	var validationErrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	account, err := domain.NewUser(domain.UserRegistrationParams{
		Name:     "Rui Costa",
		Email:    "rui@example.com",
		Password: "Str0ngPass",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		userRepo.On("GetByEmail", mock.Anything, "rui@example.com").Return(account, nil).Once()

		user, err := NewAuthService(userRepo).Login(context.Background(), "rui@example.com", "Str0ngPass")

		require.NoError(t, err)
		assert.Equal(t, account, user)
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		userRepo.On("GetByEmail", mock.Anything, "rui@example.com").Return(account, nil).Once()

		_, err := NewAuthService(userRepo).Login(context.Background(), "rui@example.com", "WrongPass1")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		userRepo := mocks.NewMockUserRepository()
		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, apperrors.ErrUserNotFound).Once()

		_, err := NewAuthService(userRepo).Login(context.Background(), "ghost@example.com", "Str0ngPass")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		inactive := *account
		inactive.IsActive = false

		userRepo := mocks.NewMockUserRepository()
		userRepo.On("GetByEmail", mock.Anything, "rui@example.com").Return(&inactive, nil).Once()

		_, err := NewAuthService(userRepo).Login(context.Background(), "rui@example.com", "Str0ngPass")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
