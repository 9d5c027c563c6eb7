package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribersInOrder(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var order []string
	dispatcher.Subscribe(EventTicketCommentAdded, func(_ context.Context, _ Event) error {
		order = append(order, "first")
		return nil
	})
	dispatcher.Subscribe(EventTicketCommentAdded, func(_ context.Context, _ Event) error {
		order = append(order, "second")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCommentAdded, TicketID: "t1"})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var reached bool
	dispatcher.Subscribe(EventAssistHandoff, func(_ context.Context, _ Event) error {
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventAssistHandoff, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventAssistHandoff})

	require.NoError(t, err)
	assert.True(t, reached)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var called bool
	dispatcher.Subscribe(EventTicketCommentAdded, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventAssistHandoff})

	require.NoError(t, err)
	assert.False(t, called)
}
