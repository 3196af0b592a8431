package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// TicketService implements business logic for ticket management. Every
// mutation completes its durable write first, then hands its real-time
// effects to the dispatcher; a dispatcher failure degrades UX but never
// fails the mutation.
type TicketService struct {
	ticketRepo   ports.TicketRepository
	activityRepo ports.ActivityRepository
	notifier     ports.Notifier
	dispatcher   ports.EventDispatcher
	recipients   *RecipientResolver
	logger       *slog.Logger
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service.
func NewTicketService(
	ticketRepo ports.TicketRepository,
	activityRepo ports.ActivityRepository,
	notifier ports.Notifier,
	dispatcher ports.EventDispatcher,
	recipients *RecipientResolver,
	logger *slog.Logger,
) ports.TicketService {
	return &TicketService{
		ticketRepo:   ticketRepo,
		activityRepo: activityRepo,
		notifier:     notifier,
		dispatcher:   dispatcher,
		recipients:   recipients,
		logger:       logger.With("service", "ticket"),
	}
}

// CreateTicket handles the use case for submitting a new ticket.
func (s *TicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	if params.AssigneeID != nil && !params.Actor.Role.CanBeAssigned() && params.Actor.Role != domain.RoleAdmin {
		// Plain users cannot hand-pick an assignee.
		return nil, apperrors.ErrForbidden
	}

	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		CategoryID:  params.CategoryID,
		CreatorID:   params.Actor.ID,
		AssigneeID:  params.AssigneeID,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.logActivity(ctx, created.ID, params.Actor.ID, domain.ActivityTicketCreated,
		fmt.Sprintf("Ticket criado: %s", created.Title))

	// Real-time effects after the durable write committed.
	s.pushTicketEvent(ctx, domain.EventTicketCreated, created, params.Actor.ID)

	if created.AssigneeID != nil && *created.AssigneeID != params.Actor.ID {
		s.announceAssignment(ctx, created)
	}

	return created, nil
}

// GetTicket retrieves a specific ticket with role-based access control:
// admins and agents see everything, users only what they created or are
// assigned to.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64, actor ports.Actor) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if !canAccessTicket(ticket, actor) {
		return nil, apperrors.ErrForbidden
	}

	return ticket, nil
}

// UpdateTicket applies status, priority and assignee changes. Only admins
// and agents mutate tickets.
func (s *TicketService) UpdateTicket(ctx context.Context, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	if params.Actor.Role != domain.RoleAdmin && params.Actor.Role != domain.RoleAgent {
		return nil, apperrors.ErrForbidden
	}

	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	statusChanged := false
	assigneeChanged := false

	if params.Status != nil && *params.Status != ticket.Status {
		if err := ticket.UpdateStatus(*params.Status); err != nil {
			return nil, err
		}
		statusChanged = true
	}

	if params.Priority != nil && *params.Priority != ticket.Priority {
		if err := ticket.UpdatePriority(*params.Priority); err != nil {
			return nil, err
		}
		s.logActivity(ctx, ticket.ID, params.Actor.ID, domain.ActivityPriorityChanged,
			fmt.Sprintf("Prioridade alterada para %s", *params.Priority))
	}

	if params.AssigneeID != nil && !ticket.IsAssignedTo(*params.AssigneeID) {
		if err := ticket.Assign(*params.AssigneeID); err != nil {
			return nil, err
		}
		assigneeChanged = true
	}

	updated, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.logActivity(ctx, updated.ID, params.Actor.ID, domain.ActivityStatusChanged,
			fmt.Sprintf("Estado alterado para %s", updated.Status))
		if updated.CreatorID != params.Actor.ID {
			s.announce(ctx, ports.Announcement{
				RecipientIDs: []uuid.UUID{updated.CreatorID},
				Title:        "Estado Atualizado",
				Message:      fmt.Sprintf("O ticket #%d mudou para %s", updated.ID, updated.Status),
				Type:         domain.NotificationStatusChanged,
				Link:         ticketLink(updated.ID),
			})
		}
	}

	if assigneeChanged {
		s.logActivity(ctx, updated.ID, params.Actor.ID, domain.ActivityAssigneeChanged,
			fmt.Sprintf("Ticket atribuído a %s", updated.AssigneeID))
		if *updated.AssigneeID != params.Actor.ID {
			s.announceAssignment(ctx, updated)
		}
	}

	s.pushTicketEvent(ctx, domain.EventTicketUpdated, updated, params.Actor.ID)

	return updated, nil
}

// ListTickets retrieves tickets scoped to the actor's role and filters.
func (s *TicketService) ListTickets(ctx context.Context, params ports.ListTicketsParams) ([]*domain.Ticket, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	repoParams := ports.ListTicketsRepoParams{
		Limit:      int32(limit),
		Offset:     int32(params.Offset),
		Status:     params.Status,
		Priority:   params.Priority,
		CategoryID: params.CategoryID,
	}

	actorID := params.Actor.ID
	if params.AssignedToMe {
		repoParams.AssigneeID = &actorID
	}
	if params.CreatedByMe {
		repoParams.CreatorID = &actorID
	}

	// Plain users only ever see their own tickets.
	if params.Actor.Role == domain.RoleUser {
		repoParams.CreatorID = &actorID
	}

	return s.ticketRepo.List(ctx, repoParams)
}

// ListActivity returns the audit log for a ticket the actor can access.
func (s *TicketService) ListActivity(ctx context.Context, ticketID int64, actor ports.Actor) ([]*domain.Activity, error) {
	if _, err := s.GetTicket(ctx, ticketID, actor); err != nil {
		return nil, err
	}
	return s.activityRepo.ListByTicketID(ctx, ticketID)
}

// canAccessTicket is the role-comparison access rule shared by reads.
func canAccessTicket(ticket *domain.Ticket, actor ports.Actor) bool {
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleAgent {
		return true
	}
	return ticket.IsOwnedBy(actor.ID) || ticket.IsAssignedTo(actor.ID)
}

// announceAssignment records and pushes the "you were assigned" fact to
// the new assignee, plus a best-effort email.
func (s *TicketService) announceAssignment(ctx context.Context, ticket *domain.Ticket) {
	assigneeID := *ticket.AssigneeID

	s.announce(ctx, ports.Announcement{
		RecipientIDs: []uuid.UUID{assigneeID},
		Title:        "Ticket Atribuído",
		Message:      fmt.Sprintf("Foi-lhe atribuído o ticket #%d: %s", ticket.ID, ticket.Title),
		Type:         domain.NotificationTicketAssigned,
		Link:         ticketLink(ticket.ID),
	})

	go s.notifier.Notify(context.Background(), ports.NotificationParams{
		RecipientUserID: assigneeID,
		Subject:         fmt.Sprintf("Ticket #%d atribuído a si", ticket.ID),
		Message:         fmt.Sprintf("Foi-lhe atribuído o ticket '%s'.", ticket.Title),
		TicketID:        ticket.ID,
	})
}

// announce forwards to the dispatcher, demoting failures to warnings: a
// notification is a side effect of the mutation, not a precondition.
func (s *TicketService) announce(ctx context.Context, ann ports.Announcement) {
	if err := s.dispatcher.Announce(ctx, ann); err != nil {
		s.logger.Warn("notification announce failed",
			"type", ann.Type,
			"recipients", len(ann.RecipientIDs),
			"error", err,
		)
	}
}

// pushTicketEvent resolves the recipient set for an ephemeral ticket
// event and fans it out.
func (s *TicketService) pushTicketEvent(ctx context.Context, eventType domain.EventType, ticket *domain.Ticket, actorID uuid.UUID) {
	recipientIDs, err := s.recipients.Resolve(ctx, eventType, ticket, actorID)
	if err != nil {
		s.logger.Warn("recipient resolution failed",
			"event_type", eventType,
			"ticket_id", ticket.ID,
			"error", err,
		)
		return
	}
	s.dispatcher.Push(ctx, eventType, recipientIDs, ticket)
}

// logActivity appends to the audit log; failures are logged and ignored.
func (s *TicketService) logActivity(ctx context.Context, ticketID int64, actorID uuid.UUID, activityType domain.ActivityType, detail string) {
	_, err := s.activityRepo.Create(ctx, &domain.Activity{
		TicketID: ticketID,
		ActorID:  actorID,
		Type:     activityType,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn("activity log write failed",
			"ticket_id", ticketID,
			"type", activityType,
			"error", err,
		)
	}
}

func ticketLink(ticketID int64) *string {
	link := fmt.Sprintf("/tickets/%d", ticketID)
	return &link
}
