package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

// ActivityRepository is the secondary adapter for the ticket audit log.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(pool *pgxpool.Pool) ports.ActivityRepository {
	return &ActivityRepository{pool: pool}
}

const activityColumns = "id, ticket_id, actor_id, type, detail, created_at"

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var activity domain.Activity
	var activityType string
	err := row.Scan(&activity.ID, &activity.TicketID, &activity.ActorID, &activityType, &activity.Detail, &activity.CreatedAt)
	if err != nil {
		return nil, err
	}
	activity.Type = domain.ActivityType(activityType)
	return &activity, nil
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ticket_activity (ticket_id, actor_id, type, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING `+activityColumns,
		activity.TicketID, activity.ActorID, string(activity.Type), activity.Detail,
	)
	return scanActivity(row)
}

func (r *ActivityRepository) ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+activityColumns+` FROM ticket_activity
		WHERE ticket_id = $1
		ORDER BY created_at`,
		ticketID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
