package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/mocks"
)

func TestRecipientResolver_TicketCreatedGoesToActiveAdminsAndAssignee(t *testing.T) {
	activeAdmin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin, IsActive: true}
	inactiveAdmin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin, IsActive: false}
	assigneeID := uuid.New()
	creatorID := uuid.New()

	userRepo := mocks.NewMockUserRepository()
	userRepo.On("ListByRoles", mock.Anything, []domain.Role{domain.RoleAdmin}).
		Return([]*domain.User{activeAdmin, inactiveAdmin}, nil).Once()

	resolver := NewRecipientResolver(userRepo)
	ticket := &domain.Ticket{ID: 1, CreatorID: creatorID, AssigneeID: &assigneeID}

	recipients, err := resolver.Resolve(context.Background(), domain.EventTicketCreated, ticket, creatorID)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{activeAdmin.ID, assigneeID}, recipients)
	userRepo.AssertExpectations(t)
}

func TestRecipientResolver_TicketCreatedDedupesAdminAssignee(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin, IsActive: true}

	userRepo := mocks.NewMockUserRepository()
	userRepo.On("ListByRoles", mock.Anything, mock.Anything).
		Return([]*domain.User{admin}, nil).Once()

	resolver := NewRecipientResolver(userRepo)
	// The assignee is also an admin; they must appear once.
	ticket := &domain.Ticket{ID: 1, CreatorID: uuid.New(), AssigneeID: &admin.ID}

	recipients, err := resolver.Resolve(context.Background(), domain.EventTicketCreated, ticket, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{admin.ID}, recipients)
}

func TestRecipientResolver_TicketUpdatedGoesToCreatorAndAssignee(t *testing.T) {
	creatorID := uuid.New()
	assigneeID := uuid.New()

	resolver := NewRecipientResolver(mocks.NewMockUserRepository())
	ticket := &domain.Ticket{ID: 2, CreatorID: creatorID, AssigneeID: &assigneeID}

	recipients, err := resolver.Resolve(context.Background(), domain.EventTicketUpdated, ticket, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{creatorID, assigneeID}, recipients)
}

func TestRecipientResolver_TicketUpdatedUnassigned(t *testing.T) {
	creatorID := uuid.New()

	resolver := NewRecipientResolver(mocks.NewMockUserRepository())
	ticket := &domain.Ticket{ID: 2, CreatorID: creatorID}

	recipients, err := resolver.Resolve(context.Background(), domain.EventTicketUpdated, ticket, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{creatorID}, recipients)
}

func TestRecipientResolver_CommentAddedExcludesCommenter(t *testing.T) {
	creatorID := uuid.New()
	assigneeID := uuid.New()

	resolver := NewRecipientResolver(mocks.NewMockUserRepository())
	ticket := &domain.Ticket{ID: 3, CreatorID: creatorID, AssigneeID: &assigneeID}

	// The assignee comments: only the creator should hear about it.
	recipients, err := resolver.Resolve(context.Background(), domain.EventCommentAdded, ticket, assigneeID)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{creatorID}, recipients)
}

func TestRecipientResolver_CommentAddedByCreatorOnOwnUnassignedTicket(t *testing.T) {
	creatorID := uuid.New()

	resolver := NewRecipientResolver(mocks.NewMockUserRepository())
	ticket := &domain.Ticket{ID: 3, CreatorID: creatorID}

	recipients, err := resolver.Resolve(context.Background(), domain.EventCommentAdded, ticket, creatorID)

	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestRecipientResolver_UnknownEventResolvesToNobody(t *testing.T) {
	resolver := NewRecipientResolver(mocks.NewMockUserRepository())
	ticket := &domain.Ticket{ID: 4, CreatorID: uuid.New()}

	recipients, err := resolver.Resolve(context.Background(), domain.EventConnected, ticket, uuid.New())

	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestRecipientResolver_AdminLookupFailure(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	userRepo.On("ListByRoles", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	resolver := NewRecipientResolver(userRepo)
	ticket := &domain.Ticket{ID: 5, CreatorID: uuid.New()}

	_, err := resolver.Resolve(context.Background(), domain.EventTicketCreated, ticket, uuid.New())
	assert.Error(t, err)
}
