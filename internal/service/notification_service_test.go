package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
)

func notificationFixture(ticket *domain.Ticket) (*NotificationService, *mockQueueRepo, events.Dispatcher) {
	queue := newMockQueueRepo()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(queue, newMockTicketRepo(ticket), dispatcher, zap.NewNop())
	svc.RegisterHandlers()
	return svc, queue, dispatcher
}

func assignedTicket() *domain.Ticket {
	assignee := "agent-7"
	ticket := openTicket()
	ticket.AssigneeID = &assignee
	return ticket
}

func TestAgentCommentNotifiesCustomer(t *testing.T) {
	_, queue, dispatcher := notificationFixture(assignedTicket())

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: "t1",
		Payload:  events.TicketCommentAddedPayload{EventID: "e9", AuthorID: "agent-7"},
	})

	require.NoError(t, err)
	require.Len(t, queue.enqueued, 1)
	entry := queue.enqueued[0]
	assert.Equal(t, customerID, entry.UserID)
	assert.Equal(t, "t1", entry.TicketID)
	assert.Equal(t, "e9", entry.EventID)
	assert.Equal(t, domain.NotificationStatusPending, entry.Status)
}

func TestCustomerCommentNotifiesAssignee(t *testing.T) {
	_, queue, dispatcher := notificationFixture(assignedTicket())

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: "t1",
		Payload:  events.TicketCommentAddedPayload{EventID: "e9", AuthorID: customerID},
	})

	require.NoError(t, err)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "agent-7", queue.enqueued[0].UserID)
}

func TestCustomerCommentOnUnassignedTicketSkipped(t *testing.T) {
	_, queue, dispatcher := notificationFixture(openTicket())

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: "t1",
		Payload:  events.TicketCommentAddedPayload{EventID: "e9", AuthorID: customerID},
	})

	require.NoError(t, err)
	assert.Empty(t, queue.enqueued)
}

func TestHandoffNotifiesAssignee(t *testing.T) {
	_, queue, dispatcher := notificationFixture(assignedTicket())

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventAssistHandoff,
		TicketID: "t1",
		Payload:  events.AssistHandoffPayload{EventID: "e9", Reason: "kb gap"},
	})

	require.NoError(t, err)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "agent-7", queue.enqueued[0].UserID)
}

func TestHandoffOnUnassignedTicketSkipped(t *testing.T) {
	_, queue, dispatcher := notificationFixture(openTicket())

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventAssistHandoff,
		TicketID: "t1",
		Payload:  events.AssistHandoffPayload{EventID: "e9"},
	})

	require.NoError(t, err)
	assert.Empty(t, queue.enqueued)
}

func TestUnknownPayloadShapeIgnored(t *testing.T) {
	_, queue, dispatcher := notificationFixture(assignedTicket())

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: "t1",
		Payload:  "not a payload struct",
	})

	require.NoError(t, err)
	assert.Empty(t, queue.enqueued)
}
