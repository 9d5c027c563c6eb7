package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/config"
	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// BatchSummary reports one dispatch batch.
type BatchSummary struct {
	Processed    int `json:"processed"`
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}

// DispatcherService drains the notification queue: it claims a batch of
// eligible entries, attempts delivery once per entry, and records the
// outcome. Delivery and status update are separate steps, so a crash in
// between can duplicate a send; delivery is at-least-once.
type DispatcherService struct {
	queue   repository.NotificationRepository
	users   repository.UserRepository
	tickets repository.TicketRepository
	events  repository.TicketEventRepository
	mailer  Mailer
	metrics *observability.Metrics
	logger  *zap.Logger
	cfg     config.NotificationConfig
}

// DispatcherDependencies bundles collaborators for the dispatcher.
type DispatcherDependencies struct {
	QueueRepo  repository.NotificationRepository
	UserRepo   repository.UserRepository
	TicketRepo repository.TicketRepository
	EventRepo  repository.TicketEventRepository
	Mailer     Mailer
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Config     config.NotificationConfig
}

// NewDispatcherService constructs the service.
func NewDispatcherService(deps DispatcherDependencies) *DispatcherService {
	return &DispatcherService{
		queue:   deps.QueueRepo,
		users:   deps.UserRepo,
		tickets: deps.TicketRepo,
		events:  deps.EventRepo,
		mailer:  deps.Mailer,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		cfg:     deps.Config,
	}
}

// ProcessBatch runs one dispatch batch and returns its summary. Callable
// both from the interval worker and synchronously over HTTP. One entry's
// failure never blocks the rest of the batch.
func (d *DispatcherService) ProcessBatch(ctx context.Context) (BatchSummary, error) {
	var summary BatchSummary

	batchSize := d.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	maxRetries := d.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	entries, err := d.queue.ClaimBatch(ctx, batchSize, maxRetries, d.cfg.ClaimTTL())
	if err != nil {
		return summary, fmt.Errorf("claim notification batch: %w", err)
	}

	for _, entry := range entries {
		if entry.RetryCount >= maxRetries {
			// The claim query excludes exhausted entries; a claim that
			// still returns one must not lead to another send attempt.
			d.logger.Warn("exhausted entry claimed, skipping",
				zap.String("entry_id", entry.ID),
				zap.Int("retry_count", entry.RetryCount))
			continue
		}
		summary.Processed++
		if err := d.deliver(ctx, entry); err != nil {
			summary.FailureCount++
			d.metrics.RecordNotification(false)
			if markErr := d.queue.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
				d.logger.Error("failed to record delivery failure",
					zap.String("entry_id", entry.ID), zap.Error(markErr))
			}
			d.logger.Warn("notification delivery failed",
				zap.String("entry_id", entry.ID),
				zap.Int("retry_count", entry.RetryCount+1),
				zap.Error(err))
			continue
		}
		summary.SuccessCount++
		d.metrics.RecordNotification(true)
		if err := d.queue.MarkSent(ctx, entry.ID); err != nil {
			d.logger.Error("delivered but failed to mark sent; entry may be re-sent",
				zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}

	if summary.Processed > 0 {
		d.logger.Info("notification batch processed",
			zap.Int("processed", summary.Processed),
			zap.Int("success", summary.SuccessCount),
			zap.Int("failure", summary.FailureCount))
	}
	return summary, nil
}

func (d *DispatcherService) deliver(ctx context.Context, entry domain.NotificationQueueEntry) error {
	user, err := d.users.GetByID(ctx, entry.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	ticket, err := d.tickets.GetByID(ctx, entry.TicketID)
	if err != nil {
		return fmt.Errorf("load ticket: %w", err)
	}
	event, err := d.events.GetByID(ctx, entry.EventID)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}

	subject, body := composeEmail(ticket, event)
	return d.mailer.Send(ctx, user.Email, subject, body)
}

func composeEmail(ticket *domain.Ticket, event *domain.TicketEvent) (subject, body string) {
	switch event.Type {
	case domain.EventTypeComment:
		subject = fmt.Sprintf("New reply on ticket: %s", ticket.Title)
		body = fmt.Sprintf("There is a new reply on your ticket %q:\n\n%s\n", ticket.Title, event.Payload.CommentText)
	case domain.EventTypeStatusChange:
		newStatus := ""
		if event.Payload.NewStatus != nil {
			newStatus = strings.ToLower(string(*event.Payload.NewStatus))
		}
		subject = fmt.Sprintf("Ticket status changed: %s", ticket.Title)
		body = fmt.Sprintf("The status of your ticket %q changed to %s.\n", ticket.Title, newStatus)
	default:
		subject = fmt.Sprintf("Update on ticket: %s", ticket.Title)
		body = fmt.Sprintf("Your ticket %q has a new update.\n", ticket.Title)
	}
	return subject, body
}
