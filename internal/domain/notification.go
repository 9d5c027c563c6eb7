package domain

import "time"

// NotificationStatus enumerates delivery states of a queue entry.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// NotificationQueueEntry is one pending email delivery. Entries with
// RetryCount below the configured limit remain eligible for later batches
// even after a failed attempt; once the limit is reached the entry is
// permanently undelivered.
type NotificationQueueEntry struct {
	ID         string
	UserID     string
	TicketID   string
	EventID    string
	Status     NotificationStatus
	RetryCount int
	Error      *string
	ClaimedAt  *time.Time
	CreatedAt  time.Time
}
