package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// TicketRepository is the secondary adapter for ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = "id, title, description, status, priority, category_id, creator_id, assignee_id, created_at, updated_at"

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var status, priority string
	err := row.Scan(
		&ticket.ID, &ticket.Title, &ticket.Description, &status, &priority,
		&ticket.CategoryID, &ticket.CreatorID, &ticket.AssigneeID,
		&ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	ticket.Priority = domain.TicketPriority(priority)
	return &ticket, nil
}

// Create persists a new ticket entity.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tickets (title, description, status, priority, category_id, creator_id, assignee_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+ticketColumns,
		ticket.Title, ticket.Description, string(ticket.Status), string(ticket.Priority),
		ticket.CategoryID, ticket.CreatorID, ticket.AssigneeID, ticket.CreatedAt,
	)
	return scanTicket(row)
}

// GetByID retrieves a single ticket by its ID.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// Update persists changes to an existing ticket entity.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tickets
		SET title = $2, description = $3, status = $4, priority = $5,
		    category_id = $6, assignee_id = $7, updated_at = $8
		WHERE id = $1
		RETURNING `+ticketColumns,
		ticket.ID, ticket.Title, ticket.Description, string(ticket.Status), string(ticket.Priority),
		ticket.CategoryID, ticket.AssigneeID, ticket.UpdatedAt,
	)
	updated, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return updated, nil
}

// List retrieves tickets matching the given filters, newest first.
func (r *TicketRepository) List(ctx context.Context, params ports.ListTicketsRepoParams) ([]*domain.Ticket, error) {
	var conditions []string
	var args []interface{}

	addFilter := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Status != nil {
		addFilter("status", *params.Status)
	}
	if params.Priority != nil {
		addFilter("priority", *params.Priority)
	}
	if params.CategoryID != nil {
		addFilter("category_id", *params.CategoryID)
	}
	if params.CreatorID != nil {
		addFilter("creator_id", *params.CreatorID)
	}
	if params.AssigneeID != nil {
		addFilter("assignee_id", *params.AssigneeID)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, params.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, params.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
