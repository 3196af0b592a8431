package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
)

func createTestUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(domain.UserRegistrationParams{
		Name:     "Teste",
		Email:    email,
		Password: "Str0ngPass",
	})
	require.NoError(t, err)

	created, err := NewUserRepository(testPool).Create(context.Background(), user)
	require.NoError(t, err)
	return created
}

func TestNotificationRepository_CreateAndList(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewNotificationRepository(testPool)
	recipient := createTestUser(t, "recipient@example.com")

	link := "/tickets/1"
	created, err := repo.Create(ctx, &domain.Notification{
		RecipientID: recipient.ID,
		Title:       "Ticket Atribuído",
		Message:     "Foi-lhe atribuído o ticket #1: Impressora",
		Type:        domain.NotificationTicketAssigned,
		Link:        &link,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.Read)
	assert.False(t, created.CreatedAt.IsZero())

	listed, err := repo.ListByRecipient(ctx, recipient.ID, 20)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	require.NotNil(t, listed[0].Link)
	assert.Equal(t, link, *listed[0].Link)
}

func TestNotificationRepository_ListNewestFirstWithLimit(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewNotificationRepository(testPool)
	recipient := createTestUser(t, "recipient@example.com")

	var lastID int64
	for i := 0; i < 5; i++ {
		created, err := repo.Create(ctx, &domain.Notification{
			RecipientID: recipient.ID,
			Title:       "Novo Comentário",
			Message:     "Novo comentário no ticket #1",
			Type:        domain.NotificationCommentAdded,
		})
		require.NoError(t, err)
		lastID = created.ID
	}

	listed, err := repo.ListByRecipient(ctx, recipient.ID, 3)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, lastID, listed[0].ID)
	assert.GreaterOrEqual(t, listed[0].ID, listed[1].ID)
	assert.GreaterOrEqual(t, listed[1].ID, listed[2].ID)
}

func TestNotificationRepository_ListScopedToRecipient(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewNotificationRepository(testPool)
	alice := createTestUser(t, "alice@example.com")
	bruno := createTestUser(t, "bruno@example.com")

	_, err := repo.Create(ctx, &domain.Notification{
		RecipientID: alice.ID,
		Title:       "Estado Atualizado",
		Message:     "O ticket #1 mudou para RESOLVED",
		Type:        domain.NotificationStatusChanged,
	})
	require.NoError(t, err)

	listed, err := repo.ListByRecipient(ctx, bruno.ID, 20)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewNotificationRepository(testPool)
	recipient := createTestUser(t, "recipient@example.com")

	created, err := repo.Create(ctx, &domain.Notification{
		RecipientID: recipient.ID,
		Title:       "Ticket Atribuído",
		Message:     "Foi-lhe atribuído o ticket #2: VPN",
		Type:        domain.NotificationTicketAssigned,
	})
	require.NoError(t, err)

	require.NoError(t, repo.MarkRead(ctx, created.ID, recipient.ID))

	listed, err := repo.ListByRecipient(ctx, recipient.ID, 20)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Read)
}

func TestNotificationRepository_MarkReadRejectsForeignRecipient(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewNotificationRepository(testPool)
	owner := createTestUser(t, "owner@example.com")
	intruder := createTestUser(t, "intruder@example.com")

	created, err := repo.Create(ctx, &domain.Notification{
		RecipientID: owner.ID,
		Title:       "Novo Comentário",
		Message:     "Novo comentário no ticket #3",
		Type:        domain.NotificationCommentAdded,
	})
	require.NoError(t, err)

	err = repo.MarkRead(ctx, created.ID, intruder.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotificationNotFound)

	// The row is untouched.
	listed, err := repo.ListByRecipient(ctx, owner.ID, 20)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].Read)
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewNotificationRepository(testPool)
	recipient := createTestUser(t, "recipient@example.com")

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &domain.Notification{
			RecipientID: recipient.ID,
			Title:       "Novo Comentário",
			Message:     "Novo comentário no ticket #4",
			Type:        domain.NotificationCommentAdded,
		})
		require.NoError(t, err)
	}

	require.NoError(t, repo.MarkAllRead(ctx, recipient.ID))

	listed, err := repo.ListByRecipient(ctx, recipient.ID, 20)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for _, notification := range listed {
		assert.True(t, notification.Read)
	}
}
