package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventPolicyChanged, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventPolicyChanged, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.EntityID)
		return nil
	})
	d.Subscribe(EventTaskChanged, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventPolicyChanged, EntityID: "p1"})
	require.EqualError(t, err, "policy.changed handler 0: boom")
	require.Equal(t, []string{"first", "second:p1"}, calls)
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	ran := false
	d.Subscribe(EventEmployeeChanged, func(context.Context, Event) error {
		panic("nil section")
	})
	d.Subscribe(EventEmployeeChanged, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventEmployeeChanged})
	require.ErrorContains(t, err, "panic: nil section")
	require.True(t, ran)
}

func TestDispatcherSubscribeAllSeesEveryTypeAfterTypedHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.SubscribeAll(func(_ context.Context, e Event) error {
		calls = append(calls, "all:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventDepartmentChanged, func(context.Context, Event) error {
		calls = append(calls, "typed")
		return nil
	})

	for _, et := range []EventType{EventDepartmentChanged, EventTaskChanged} {
		require.NoError(t, d.Publish(context.Background(), Event{Type: et}))
	}
	require.Equal(t, []string{"typed", "all:department.changed", "all:task.changed"}, calls)
}

func TestDispatcherStampsMissingIDAndTimestamp(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []Event
	d.SubscribeAll(func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTaskChanged}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTaskChanged, ID: "evt-1", Timestamp: at}))

	require.Len(t, seen, 2)
	require.NotEmpty(t, seen[0].ID)
	require.False(t, seen[0].Timestamp.IsZero())
	require.Equal(t, "evt-1", seen[1].ID)
	require.Equal(t, at, seen[1].Timestamp)
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventEmployeeChanged}))
}

func TestActorFrom(t *testing.T) {
	require.Equal(t, "system", ActorFrom(nil).Name)
}
