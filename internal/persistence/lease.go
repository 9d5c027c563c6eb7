package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TicketLeaser grants an exclusive per-ticket lease for the duration of a
// pipeline run. A second trigger for the same ticket must abandon its run
// while the lease is held.
type TicketLeaser interface {
	Acquire(ctx context.Context, ticketID string) (bool, error)
	Release(ctx context.Context, ticketID string) error
}

type redisTicketLeaser struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTicketLeaser builds a Redis-backed leaser. The TTL bounds how long a
// crashed run can keep a ticket locked.
func NewTicketLeaser(client *redis.Client, ttl time.Duration) TicketLeaser {
	return &redisTicketLeaser{client: client, ttl: ttl}
}

func (l *redisTicketLeaser) Acquire(ctx context.Context, ticketID string) (bool, error) {
	return l.client.SetNX(ctx, leaseKey(ticketID), "1", l.ttl).Result()
}

func (l *redisTicketLeaser) Release(ctx context.Context, ticketID string) error {
	return l.client.Del(ctx, leaseKey(ticketID)).Err()
}

func leaseKey(ticketID string) string {
	return "assist:lease:" + ticketID
}
