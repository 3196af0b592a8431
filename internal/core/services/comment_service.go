package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// CommentService implements the business logic for comments.
type CommentService struct {
	commentRepo  ports.CommentRepository
	activityRepo ports.ActivityRepository
	ticketSvc    ports.TicketService
	notifier     ports.Notifier
	dispatcher   ports.EventDispatcher
	recipients   *RecipientResolver
	logger       *slog.Logger
}

var _ ports.CommentService = (*CommentService)(nil)

// NewCommentService creates a new service for comment logic.
func NewCommentService(
	commentRepo ports.CommentRepository,
	activityRepo ports.ActivityRepository,
	ticketSvc ports.TicketService,
	notifier ports.Notifier,
	dispatcher ports.EventDispatcher,
	recipients *RecipientResolver,
	logger *slog.Logger,
) ports.CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		activityRepo: activityRepo,
		ticketSvc:    ticketSvc,
		notifier:     notifier,
		dispatcher:   dispatcher,
		recipients:   recipients,
		logger:       logger.With("service", "comment"),
	}
}

// CreateComment adds a new comment to a ticket the actor can access.
func (s *CommentService) CreateComment(ctx context.Context, params ports.CreateCommentParams) (*domain.Comment, error) {
	// GetTicket carries the access rule; it also gives us the ticket for
	// recipient derivation.
	ticket, err := s.ticketSvc.GetTicket(ctx, params.TicketID, params.Actor)
	if err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(domain.CommentParams{
		TicketID: params.TicketID,
		AuthorID: params.Actor.ID,
		Body:     params.Body,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}

	if _, err := s.activityRepo.Create(ctx, &domain.Activity{
		TicketID: ticket.ID,
		ActorID:  params.Actor.ID,
		Type:     domain.ActivityCommentAdded,
		Detail:   fmt.Sprintf("Comentário adicionado ao ticket #%d", ticket.ID),
	}); err != nil {
		s.logger.Warn("activity log write failed", "ticket_id", ticket.ID, "error", err)
	}

	// Creator and assignee get the push and the durable notification;
	// the commenter never notifies themselves.
	recipientIDs, err := s.recipients.Resolve(ctx, domain.EventCommentAdded, ticket, params.Actor.ID)
	if err != nil {
		s.logger.Warn("recipient resolution failed", "ticket_id", ticket.ID, "error", err)
		return created, nil
	}

	s.dispatcher.Push(ctx, domain.EventCommentAdded, recipientIDs, domain.CommentAddedPayload{
		TicketID: ticket.ID,
		Comment:  created,
	})

	if err := s.dispatcher.Announce(ctx, ports.Announcement{
		RecipientIDs: recipientIDs,
		Title:        "Novo Comentário",
		Message:      fmt.Sprintf("Novo comentário no ticket #%d", ticket.ID),
		Type:         domain.NotificationCommentAdded,
		Link:         ticketLink(ticket.ID),
	}); err != nil {
		s.logger.Warn("notification announce failed", "ticket_id", ticket.ID, "error", err)
	}

	if ticket.CreatorID != params.Actor.ID {
		go s.notifier.Notify(context.Background(), ports.NotificationParams{
			RecipientUserID: ticket.CreatorID,
			Subject:         fmt.Sprintf("Novo comentário no seu ticket #%d", ticket.ID),
			Message:         fmt.Sprintf("O ticket '%s' recebeu um novo comentário.", ticket.Title),
			TicketID:        ticket.ID,
		})
	}

	return created, nil
}

// ListComments retrieves all comments for a ticket the actor can access.
func (s *CommentService) ListComments(ctx context.Context, ticketID int64, actor ports.Actor) ([]*domain.Comment, error) {
	if _, err := s.ticketSvc.GetTicket(ctx, ticketID, actor); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTicketID(ctx, ticketID)
}
