package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/mocks"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// fakeNotifier delivers params on a channel so tests can wait for the
// async email goroutine without sleeping.
type fakeNotifier struct {
	sent chan ports.NotificationParams
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(chan ports.NotificationParams, 4)}
}

func (n *fakeNotifier) Notify(_ context.Context, params ports.NotificationParams) {
	n.sent <- params
}

type ticketServiceFixture struct {
	ticketRepo   *mocks.MockTicketRepository
	activityRepo *mocks.MockActivityRepository
	userRepo     *mocks.MockUserRepository
	notifier     *fakeNotifier
	dispatcher   *mocks.MockEventDispatcher
	service      ports.TicketService
}

func newTicketServiceFixture() *ticketServiceFixture {
	f := &ticketServiceFixture{
		ticketRepo:   mocks.NewMockTicketRepository(),
		activityRepo: mocks.NewMockActivityRepository(),
		userRepo:     mocks.NewMockUserRepository(),
		notifier:     newFakeNotifier(),
		dispatcher:   mocks.NewMockEventDispatcher(),
	}
	f.service = NewTicketService(
		f.ticketRepo,
		f.activityRepo,
		f.notifier,
		f.dispatcher,
		NewRecipientResolver(f.userRepo),
		testLogger(),
	)
	return f
}

func (f *ticketServiceFixture) expectActivity() {
	f.activityRepo.On("Create", mock.Anything, mock.Anything).
		Return(&domain.Activity{ID: 1}, nil)
}

func TestTicketService_CreateTicket(t *testing.T) {
	f := newTicketServiceFixture()
	creator := ports.Actor{ID: uuid.New(), Role: domain.RoleUser}
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin, IsActive: true}

	f.ticketRepo.On("Create", mock.Anything, mock.MatchedBy(func(tk *domain.Ticket) bool {
		return tk.Title == "Impressora avariada" && tk.CreatorID == creator.ID &&
			tk.Status == domain.StatusOpen
	})).Return(&domain.Ticket{
		ID: 1, Title: "Impressora avariada", Status: domain.StatusOpen,
		Priority: domain.PriorityMedium, CreatorID: creator.ID,
	}, nil).Once()
	f.expectActivity()
	f.userRepo.On("ListByRoles", mock.Anything, mock.Anything).
		Return([]*domain.User{admin}, nil).Once()
	f.dispatcher.On("Push", mock.Anything, domain.EventTicketCreated,
		[]uuid.UUID{admin.ID}, mock.Anything).Once()

	ticket, err := f.service.CreateTicket(context.Background(), ports.CreateTicketParams{
		Title:       "Impressora avariada",
		Description: "A impressora do piso 2 não imprime.",
		Actor:       creator,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), ticket.ID)
	f.dispatcher.AssertExpectations(t)
	f.ticketRepo.AssertExpectations(t)
}

func TestTicketService_CreateTicketUserCannotPickAssignee(t *testing.T) {
	f := newTicketServiceFixture()
	assigneeID := uuid.New()

	_, err := f.service.CreateTicket(context.Background(), ports.CreateTicketParams{
		Title:      "Teclado partido",
		AssigneeID: &assigneeID,
		Actor:      ports.Actor{ID: uuid.New(), Role: domain.RoleUser},
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.ticketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketService_CreateTicketWithAssigneeAnnounces(t *testing.T) {
	f := newTicketServiceFixture()
	admin := ports.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	assigneeID := uuid.New()

	created := &domain.Ticket{
		ID: 2, Title: "VPN não liga", Status: domain.StatusOpen,
		Priority: domain.PriorityHigh, CreatorID: admin.ID, AssigneeID: &assigneeID,
	}
	f.ticketRepo.On("Create", mock.Anything, mock.Anything).Return(created, nil).Once()
	f.expectActivity()
	f.userRepo.On("ListByRoles", mock.Anything, mock.Anything).
		Return([]*domain.User{}, nil).Once()
	f.dispatcher.On("Push", mock.Anything, domain.EventTicketCreated, mock.Anything, mock.Anything).Maybe()
	f.dispatcher.On("Announce", mock.Anything, mock.MatchedBy(func(ann ports.Announcement) bool {
		return ann.Type == domain.NotificationTicketAssigned &&
			len(ann.RecipientIDs) == 1 && ann.RecipientIDs[0] == assigneeID &&
			ann.Title == "Ticket Atribuído"
	})).Return(nil).Once()

	_, err := f.service.CreateTicket(context.Background(), ports.CreateTicketParams{
		Title:      "VPN não liga",
		Priority:   domain.PriorityHigh,
		AssigneeID: &assigneeID,
		Actor:      admin,
	})

	require.NoError(t, err)
	f.dispatcher.AssertExpectations(t)

	select {
	case params := <-f.notifier.sent:
		assert.Equal(t, assigneeID, params.RecipientUserID)
		assert.Equal(t, int64(2), params.TicketID)
	case <-time.After(time.Second):
		t.Fatal("expected assignment email")
	}
}

func TestTicketService_GetTicketAccess(t *testing.T) {
	creatorID := uuid.New()
	assigneeID := uuid.New()
	ticket := &domain.Ticket{ID: 3, CreatorID: creatorID, AssigneeID: &assigneeID}

	cases := []struct {
		name    string
		actor   ports.Actor
		allowed bool
	}{
		{"admin sees everything", ports.Actor{ID: uuid.New(), Role: domain.RoleAdmin}, true},
		{"agent sees everything", ports.Actor{ID: uuid.New(), Role: domain.RoleAgent}, true},
		{"creator sees own ticket", ports.Actor{ID: creatorID, Role: domain.RoleUser}, true},
		{"assignee sees assigned ticket", ports.Actor{ID: assigneeID, Role: domain.RoleUser}, true},
		{"stranger is denied", ports.Actor{ID: uuid.New(), Role: domain.RoleUser}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTicketServiceFixture()
			f.ticketRepo.On("GetByID", mock.Anything, int64(3)).Return(ticket, nil).Once()

			got, err := f.service.GetTicket(context.Background(), 3, tc.actor)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, ticket, got)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrForbidden)
			}
		})
	}
}

func TestTicketService_UpdateTicketForbiddenForUsers(t *testing.T) {
	f := newTicketServiceFixture()
	status := domain.StatusResolved

	_, err := f.service.UpdateTicket(context.Background(), ports.UpdateTicketParams{
		TicketID: 4,
		Status:   &status,
		Actor:    ports.Actor{ID: uuid.New(), Role: domain.RoleUser},
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTicketService_UpdateStatusAnnouncesToCreator(t *testing.T) {
	f := newTicketServiceFixture()
	agent := ports.Actor{ID: uuid.New(), Role: domain.RoleAgent}
	creatorID := uuid.New()

	stored := &domain.Ticket{ID: 5, Title: "Rato sem pilhas", Status: domain.StatusOpen,
		Priority: domain.PriorityLow, CreatorID: creatorID}
	f.ticketRepo.On("GetByID", mock.Anything, int64(5)).Return(stored, nil).Once()
	f.ticketRepo.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Ticket) bool {
		return tk.Status == domain.StatusInProgress
	})).Return(&domain.Ticket{ID: 5, Title: "Rato sem pilhas", Status: domain.StatusInProgress,
		Priority: domain.PriorityLow, CreatorID: creatorID}, nil).Once()
	f.expectActivity()
	f.dispatcher.On("Announce", mock.Anything, mock.MatchedBy(func(ann ports.Announcement) bool {
		return ann.Type == domain.NotificationStatusChanged &&
			len(ann.RecipientIDs) == 1 && ann.RecipientIDs[0] == creatorID &&
			ann.Message == "O ticket #5 mudou para IN_PROGRESS"
	})).Return(nil).Once()
	f.dispatcher.On("Push", mock.Anything, domain.EventTicketUpdated,
		[]uuid.UUID{creatorID}, mock.Anything).Once()

	status := domain.StatusInProgress
	updated, err := f.service.UpdateTicket(context.Background(), ports.UpdateTicketParams{
		TicketID: 5,
		Status:   &status,
		Actor:    agent,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	f.dispatcher.AssertExpectations(t)
}

func TestTicketService_UpdateRejectsInvalidTransition(t *testing.T) {
	f := newTicketServiceFixture()
	stored := &domain.Ticket{ID: 6, Status: domain.StatusClosed, Priority: domain.PriorityLow,
		CreatorID: uuid.New()}
	f.ticketRepo.On("GetByID", mock.Anything, int64(6)).Return(stored, nil).Once()

	status := domain.StatusOpen
	_, err := f.service.UpdateTicket(context.Background(), ports.UpdateTicketParams{
		TicketID: 6,
		Status:   &status,
		Actor:    ports.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	f.ticketRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTicketService_ListTicketsScopesUsersToOwnTickets(t *testing.T) {
	f := newTicketServiceFixture()
	user := ports.Actor{ID: uuid.New(), Role: domain.RoleUser}

	f.ticketRepo.On("List", mock.Anything, mock.MatchedBy(func(params ports.ListTicketsRepoParams) bool {
		return params.CreatorID != nil && *params.CreatorID == user.ID && params.Limit == 20
	})).Return([]*domain.Ticket{}, nil).Once()

	_, err := f.service.ListTickets(context.Background(), ports.ListTicketsParams{Actor: user})

	require.NoError(t, err)
	f.ticketRepo.AssertExpectations(t)
}

func TestTicketService_ListTicketsClampsLimit(t *testing.T) {
	f := newTicketServiceFixture()
	agent := ports.Actor{ID: uuid.New(), Role: domain.RoleAgent}

	f.ticketRepo.On("List", mock.Anything, mock.MatchedBy(func(params ports.ListTicketsRepoParams) bool {
		return params.Limit == 20 && params.CreatorID == nil
	})).Return([]*domain.Ticket{}, nil).Once()

	_, err := f.service.ListTickets(context.Background(), ports.ListTicketsParams{
		Actor: agent,
		Limit: 5000,
	})

	require.NoError(t, err)
	f.ticketRepo.AssertExpectations(t)
}
