package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// TicketEventRepository stores the append-only ticket event log. Append is
// the only mutation; entries are never updated or reordered.
type TicketEventRepository interface {
	Append(ctx context.Context, event *domain.TicketEvent) error
	GetByID(ctx context.Context, id string) (*domain.TicketEvent, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error)
}

type ticketEventRepository struct {
	pool *pgxpool.Pool
}

// NewTicketEventRepository builds repository.
func NewTicketEventRepository(pool *pgxpool.Pool) TicketEventRepository {
	return &ticketEventRepository{pool: pool}
}

func (r *ticketEventRepository) Append(ctx context.Context, event *domain.TicketEvent) error {
	const query = `
        INSERT INTO ticket_events (ticket_id, event_type, created_by, payload)
        VALUES ($1,$2,$3,$4)
        RETURNING id, seq, created_at`
	return r.pool.QueryRow(ctx, query,
		event.TicketID,
		event.Type,
		event.CreatedBy,
		event.Payload,
	).Scan(&event.ID, &event.Seq, &event.CreatedAt)
}

func (r *ticketEventRepository) GetByID(ctx context.Context, id string) (*domain.TicketEvent, error) {
	const query = `
        SELECT id, ticket_id, seq, event_type, created_by, created_at, payload
        FROM ticket_events WHERE id=$1`
	var event domain.TicketEvent
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.TicketID,
		&event.Seq,
		&event.Type,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.Payload,
	); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *ticketEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	const query = `
        SELECT id, ticket_id, seq, event_type, created_by, created_at, payload
        FROM ticket_events WHERE ticket_id=$1 ORDER BY created_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]domain.TicketEvent, error) {
	var result []domain.TicketEvent
	for rows.Next() {
		var event domain.TicketEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.Seq,
			&event.Type,
			&event.CreatedBy,
			&event.CreatedAt,
			&event.Payload,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
