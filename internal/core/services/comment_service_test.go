package services

import (
	"context"
	"strings"
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

type commentServiceFixture struct {
	commentRepo  *mocks.MockCommentRepository
	activityRepo *mocks.MockActivityRepository
	ticketSvc    *mocks.MockTicketService
	notifier     *fakeNotifier
	dispatcher   *mocks.MockEventDispatcher
	service      ports.CommentService
}

func newCommentServiceFixture() *commentServiceFixture {
	f := &commentServiceFixture{
		commentRepo:  mocks.NewMockCommentRepository(),
		activityRepo: mocks.NewMockActivityRepository(),
		ticketSvc:    mocks.NewMockTicketService(),
		notifier:     newFakeNotifier(),
		dispatcher:   mocks.NewMockEventDispatcher(),
	}
	f.service = NewCommentService(
		f.commentRepo,
		f.activityRepo,
		f.ticketSvc,
		f.notifier,
		f.dispatcher,
		NewRecipientResolver(mocks.NewMockUserRepository()),
		testLogger(),
	)
	return f
}

func TestCommentService_CreateCommentNotifiesCreatorAndAssignee(t *testing.T) {
	f := newCommentServiceFixture()
	creatorID := uuid.New()
	assigneeID := uuid.New()
	agent := ports.Actor{ID: uuid.New(), Role: domain.RoleAgent}

	ticket := &domain.Ticket{ID: 7, Title: "Ecrã azul", CreatorID: creatorID, AssigneeID: &assigneeID}
	f.ticketSvc.On("GetTicket", mock.Anything, int64(7), agent).Return(ticket, nil).Once()

	created := &domain.Comment{ID: 1, TicketID: 7, AuthorID: agent.ID, Body: "Já estou a ver isto."}
	f.commentRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.TicketID == 7 && c.AuthorID == agent.ID
	})).Return(created, nil).Once()
	f.activityRepo.On("Create", mock.Anything, mock.Anything).Return(&domain.Activity{ID: 1}, nil).Once()

	// The commenting agent is neither creator nor assignee, so both hear
	// about it; the order is creator first.
	wantRecipients := []uuid.UUID{creatorID, assigneeID}
	f.dispatcher.On("Push", mock.Anything, domain.EventCommentAdded, wantRecipients,
		mock.MatchedBy(func(payload interface{}) bool {
			p, ok := payload.(domain.CommentAddedPayload)
			return ok && p.TicketID == 7 && p.Comment == created
		})).Once()
	f.dispatcher.On("Announce", mock.Anything, mock.MatchedBy(func(ann ports.Announcement) bool {
		return ann.Type == domain.NotificationCommentAdded &&
			ann.Title == "Novo Comentário" &&
			assert.ObjectsAreEqual(wantRecipients, ann.RecipientIDs)
	})).Return(nil).Once()

	got, err := f.service.CreateComment(context.Background(), ports.CreateCommentParams{
		TicketID: 7,
		Body:     "Já estou a ver isto.",
		Actor:    agent,
	})

	require.NoError(t, err)
	assert.Equal(t, created, got)
	f.dispatcher.AssertExpectations(t)

	select {
	case params := <-f.notifier.sent:
		assert.Equal(t, creatorID, params.RecipientUserID)
	case <-time.After(time.Second):
		t.Fatal("expected comment email to the creator")
	}
}

func TestCommentService_CreatorCommentingSkipsSelfNotification(t *testing.T) {
	f := newCommentServiceFixture()
	creator := ports.Actor{ID: uuid.New(), Role: domain.RoleUser}

	ticket := &domain.Ticket{ID: 8, Title: "Pedido de acesso", CreatorID: creator.ID}
	f.ticketSvc.On("GetTicket", mock.Anything, int64(8), creator).Return(ticket, nil).Once()
	f.commentRepo.On("Create", mock.Anything, mock.Anything).
		Return(&domain.Comment{ID: 2, TicketID: 8, AuthorID: creator.ID, Body: "Ainda preciso disto."}, nil).Once()
	f.activityRepo.On("Create", mock.Anything, mock.Anything).Return(&domain.Activity{ID: 2}, nil).Once()

	// Unassigned ticket, creator comments: nobody to notify.
	f.dispatcher.On("Push", mock.Anything, domain.EventCommentAdded, mock.Anything, mock.Anything).Maybe()
	f.dispatcher.On("Announce", mock.Anything, mock.MatchedBy(func(ann ports.Announcement) bool {
		return len(ann.RecipientIDs) == 0
	})).Return(nil).Maybe()

	_, err := f.service.CreateComment(context.Background(), ports.CreateCommentParams{
		TicketID: 8,
		Body:     "Ainda preciso disto.",
		Actor:    creator,
	})

	require.NoError(t, err)
	select {
	case <-f.notifier.sent:
		t.Fatal("commenter must not email themselves")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCommentService_CreateCommentDeniedWithoutTicketAccess(t *testing.T) {
	f := newCommentServiceFixture()
	stranger := ports.Actor{ID: uuid.New(), Role: domain.RoleUser}

	f.ticketSvc.On("GetTicket", mock.Anything, int64(9), stranger).
		Return(nil, apperrors.ErrForbidden).Once()

	_, err := f.service.CreateComment(context.Background(), ports.CreateCommentParams{
		TicketID: 9,
		Body:     "Olá?",
		Actor:    stranger,
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommentService_CreateCommentRejectsOversizedBody(t *testing.T) {
	f := newCommentServiceFixture()
	creator := ports.Actor{ID: uuid.New(), Role: domain.RoleUser}

	ticket := &domain.Ticket{ID: 10, CreatorID: creator.ID}
	f.ticketSvc.On("GetTicket", mock.Anything, int64(10), creator).Return(ticket, nil).Once()

	_, err := f.service.CreateComment(context.Background(), ports.CreateCommentParams{
		TicketID: 10,
		Body:     strings.Repeat("a", domain.MaxCommentLength+1),
		Actor:    creator,
	})

	assert.ErrorIs(t, err, apperrors.ErrCommentBodyTooLong)
}

func TestCommentService_ListCommentsRequiresTicketAccess(t *testing.T) {
	f := newCommentServiceFixture()
	stranger := ports.Actor{ID: uuid.New(), Role: domain.RoleUser}

	f.ticketSvc.On("GetTicket", mock.Anything, int64(11), stranger).
		Return(nil, apperrors.ErrForbidden).Once()

	_, err := f.service.ListComments(context.Background(), 11, stranger)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
