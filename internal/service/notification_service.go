package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// NotificationService turns domain events into queue entries for the
// dispatcher to deliver. It notifies the interested counterpart of an
// event, never the actor themselves.
type NotificationService struct {
	queue      repository.NotificationRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(queue repository.NotificationRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		queue:      queue,
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventAssistHandoff, n.handleAssistHandoff)
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}

	recipient := ticket.CreatedBy
	if payload.AuthorID == ticket.CreatedBy {
		if ticket.AssigneeID == nil {
			n.logger.Debug("no recipient for customer comment on unassigned ticket",
				zap.String("ticket_id", ticket.ID))
			return nil
		}
		recipient = *ticket.AssigneeID
	}
	return n.enqueue(ctx, recipient, ticket.ID, payload.EventID)
}

func (n *NotificationService) handleAssistHandoff(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AssistHandoffPayload)
	if !ok {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}
	if ticket.AssigneeID == nil {
		n.logger.Debug("handoff on unassigned ticket, nobody to notify",
			zap.String("ticket_id", ticket.ID))
		return nil
	}
	return n.enqueue(ctx, *ticket.AssigneeID, ticket.ID, payload.EventID)
}

func (n *NotificationService) enqueue(ctx context.Context, userID, ticketID, eventID string) error {
	entry := &domain.NotificationQueueEntry{
		UserID:   userID,
		TicketID: ticketID,
		EventID:  eventID,
		Status:   domain.NotificationStatusPending,
	}
	if err := n.queue.Enqueue(ctx, entry); err != nil {
		n.logger.Error("failed to enqueue notification",
			zap.String("ticket_id", ticketID), zap.String("user_id", userID), zap.Error(err))
		return err
	}
	n.logger.Debug("notification enqueued",
		zap.String("entry_id", entry.ID),
		zap.String("ticket_id", ticketID),
		zap.String("user_id", userID))
	return nil
}
