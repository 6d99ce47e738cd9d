package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulame/rental-service/internal/events"
)

func TestDispatcher_RunsEveryHandlerAndJoinsErrors(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	first := errors.New("first failed")
	var calls []string

	dispatcher.Subscribe(events.EventRentalRequested, func(ctx context.Context, e events.Event) error {
		calls = append(calls, "a")
		return first
	})
	dispatcher.Subscribe(events.EventRentalRequested, func(ctx context.Context, e events.Event) error {
		calls = append(calls, "b")
		return nil
	})
	dispatcher.Subscribe(events.EventCheckoutCompleted, func(ctx context.Context, e events.Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventRentalRequested})
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventVerificationReviewed}))
}
