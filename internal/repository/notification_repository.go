package repository

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// NotificationRepository manages the persisted delivery queue.
type NotificationRepository interface {
	Enqueue(ctx context.Context, entry *domain.NotificationQueueEntry) error
	// ClaimBatch atomically stamps claimed_at on up to limit eligible
	// entries (retry_count below maxRetries, not claimed within claimTTL)
	// and returns them oldest-created first. The claim keeps overlapping
	// batch runs from picking up the same entry.
	ClaimBatch(ctx context.Context, limit, maxRetries int, claimTTL time.Duration) ([]domain.NotificationQueueEntry, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, deliveryErr string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Enqueue(ctx context.Context, entry *domain.NotificationQueueEntry) error {
	const query = `
        INSERT INTO notification_queue (user_id, ticket_id, event_id, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if entry.Status == "" {
		entry.Status = domain.NotificationStatusPending
	}
	return r.pool.QueryRow(ctx, query,
		entry.UserID,
		entry.TicketID,
		entry.EventID,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *notificationRepository) ClaimBatch(ctx context.Context, limit, maxRetries int, claimTTL time.Duration) ([]domain.NotificationQueueEntry, error) {
	const query = `
        UPDATE notification_queue SET claimed_at=NOW()
        WHERE id IN (
            SELECT id FROM notification_queue
            WHERE status IN ($1,$2) AND retry_count < $3
              AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $4))
            ORDER BY created_at ASC
            LIMIT $5
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, user_id, ticket_id, event_id, status, retry_count, error, claimed_at, created_at`
	rows, err := r.pool.Query(ctx, query,
		domain.NotificationStatusPending,
		domain.NotificationStatusFailed,
		maxRetries,
		claimTTL.Seconds(),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries, err := scanQueueEntries(rows)
	if err != nil {
		return nil, err
	}
	// RETURNING does not preserve the subquery order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string) error {
	const query = `UPDATE notification_queue SET status=$2, error=NULL, claimed_at=NULL WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id, domain.NotificationStatusSent)
	return err
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id string, deliveryErr string) error {
	const query = `
        UPDATE notification_queue
        SET status=$2, retry_count=retry_count+1, error=$3, claimed_at=NULL
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id, domain.NotificationStatusFailed, deliveryErr)
	return err
}

func scanQueueEntries(rows pgx.Rows) ([]domain.NotificationQueueEntry, error) {
	var result []domain.NotificationQueueEntry
	for rows.Next() {
		var entry domain.NotificationQueueEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.TicketID,
			&entry.EventID,
			&entry.Status,
			&entry.RetryCount,
			&entry.Error,
			&entry.ClaimedAt,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
