package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	// DisableAI performs the one-way handoff transition. It only succeeds
	// when ai_enabled is still true, so concurrent runs cannot both claim
	// the transition. Returns false when the ticket was already handed off.
	DisableAI(ctx context.Context, ticketID string, reason *domain.EvaluationResult) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (organization_id, title, description, status, priority, tag, created_by, assignee_id, ai_enabled)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OrganizationID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Tag,
		ticket.CreatedBy,
		ticket.AssigneeID,
		ticket.AIEnabled,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, organization_id, title, description, status, priority, tag,
               created_by, assignee_id, ai_enabled, last_handoff_reason, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.OrganizationID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Tag,
		&ticket.CreatedBy,
		&ticket.AssigneeID,
		&ticket.AIEnabled,
		&ticket.LastHandoffReason,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, tag=$5,
            assignee_id=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Tag,
		ticket.AssigneeID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) DisableAI(ctx context.Context, ticketID string, reason *domain.EvaluationResult) (bool, error) {
	const query = `
        UPDATE tickets SET ai_enabled=FALSE, last_handoff_reason=$2, updated_at=NOW()
        WHERE id=$1 AND ai_enabled=TRUE`
	cmd, err := r.pool.Exec(ctx, query, ticketID, reason)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
