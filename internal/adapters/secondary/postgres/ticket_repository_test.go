package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

func TestTicketRepository_CreateAndGet(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewTicketRepository(testPool)
	creator := createTestUser(t, "creator@example.com")

	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:       "Impressora avariada",
		Description: "A impressora do piso 2 não imprime.",
		Priority:    domain.PriorityHigh,
		CreatorID:   creator.ID,
	})
	require.NoError(t, err)

	created, err := repo.Create(ctx, ticket)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.StatusOpen, created.Status)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, creator.ID, fetched.CreatorID)
	assert.Nil(t, fetched.AssigneeID)
	assert.Nil(t, fetched.UpdatedAt)
}

func TestTicketRepository_GetMissing(t *testing.T) {
	truncateAll(t)

	_, err := NewTicketRepository(testPool).GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_UpdatePersistsStatusAndAssignee(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewTicketRepository(testPool)
	creator := createTestUser(t, "creator@example.com")
	agent := createTestUser(t, "agent@example.com")

	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:     "VPN não liga",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	created, err := repo.Create(ctx, ticket)
	require.NoError(t, err)

	require.NoError(t, created.UpdateStatus(domain.StatusInProgress))
	require.NoError(t, created.Assign(agent.ID))

	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, agent.ID, *updated.AssigneeID)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestTicketRepository_ListFilters(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := NewTicketRepository(testPool)
	alice := createTestUser(t, "alice@example.com")
	bruno := createTestUser(t, "bruno@example.com")

	mustCreate := func(title string, creatorID uuid.UUID, priority domain.TicketPriority) {
		ticket, err := domain.NewTicket(domain.TicketParams{
			Title:     title,
			CreatorID: creatorID,
			Priority:  priority,
		})
		require.NoError(t, err)
		_, err = repo.Create(ctx, ticket)
		require.NoError(t, err)
	}

	mustCreate("Ticket da Alice", alice.ID, domain.PriorityLow)
	mustCreate("Ticket do Bruno", bruno.ID, domain.PriorityUrgent)

	byCreator, err := repo.List(ctx, ports.ListTicketsRepoParams{Limit: 20, CreatorID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, "Ticket da Alice", byCreator[0].Title)

	urgent := string(domain.PriorityUrgent)
	byPriority, err := repo.List(ctx, ports.ListTicketsRepoParams{Limit: 20, Priority: &urgent})
	require.NoError(t, err)
	require.Len(t, byPriority, 1)
	assert.Equal(t, "Ticket do Bruno", byPriority[0].Title)

	all, err := repo.List(ctx, ports.ListTicketsRepoParams{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
