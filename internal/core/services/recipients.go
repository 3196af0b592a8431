package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// RecipientResolver turns an event type plus the ticket it concerns into
// the deduplicated set of users who should receive it. The rules live in
// one declarative table instead of inline conditionals scattered across
// mutation handlers, so the dispatcher's contract stays decoupled from
// business policy.
type RecipientResolver struct {
	users ports.UserRepository
	rules map[domain.EventType]recipientRule
}

// recipientRule derives candidate recipients for one event type. The
// resolver dedupes and filters afterwards.
type recipientRule func(ctx *ruleContext) []uuid.UUID

type ruleContext struct {
	ticket  *domain.Ticket
	actorID uuid.UUID
	admins  []uuid.UUID
}

// NewRecipientResolver builds the resolver with the standard rule table:
//
//	ticket:created -> every active admin, plus the immediate assignee
//	ticket:updated -> creator and assignee
//	comment:added  -> creator and assignee, excluding the commenter
func NewRecipientResolver(users ports.UserRepository) *RecipientResolver {
	return &RecipientResolver{
		users: users,
		rules: map[domain.EventType]recipientRule{
			domain.EventTicketCreated: func(rc *ruleContext) []uuid.UUID {
				candidates := append([]uuid.UUID{}, rc.admins...)
				if rc.ticket.AssigneeID != nil {
					candidates = append(candidates, *rc.ticket.AssigneeID)
				}
				return candidates
			},
			domain.EventTicketUpdated: func(rc *ruleContext) []uuid.UUID {
				candidates := []uuid.UUID{rc.ticket.CreatorID}
				if rc.ticket.AssigneeID != nil {
					candidates = append(candidates, *rc.ticket.AssigneeID)
				}
				return candidates
			},
			domain.EventCommentAdded: func(rc *ruleContext) []uuid.UUID {
				var candidates []uuid.UUID
				if rc.ticket.CreatorID != rc.actorID {
					candidates = append(candidates, rc.ticket.CreatorID)
				}
				if rc.ticket.AssigneeID != nil && *rc.ticket.AssigneeID != rc.actorID {
					candidates = append(candidates, *rc.ticket.AssigneeID)
				}
				return candidates
			},
		},
	}
}

// Resolve returns the deduplicated recipient set for the event. Unknown
// event types resolve to no recipients.
func (r *RecipientResolver) Resolve(ctx context.Context, eventType domain.EventType, ticket *domain.Ticket, actorID uuid.UUID) ([]uuid.UUID, error) {
	rule, ok := r.rules[eventType]
	if !ok {
		return nil, nil
	}

	rc := &ruleContext{ticket: ticket, actorID: actorID}

	if eventType == domain.EventTicketCreated {
		admins, err := r.users.ListByRoles(ctx, []domain.Role{domain.RoleAdmin})
		if err != nil {
			return nil, err
		}
		for _, admin := range admins {
			if admin.IsActive {
				rc.admins = append(rc.admins, admin.ID)
			}
		}
	}

	return dedupe(rule(rc)), nil
}

// dedupe removes duplicates and the zero UUID while preserving order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
