package sse

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RoutesByEnvironment(t *testing.T) {
	hub := NewHub()
	production, stopProduction := hub.Subscribe("production")
	defer stopProduction()
	all, stopAll := hub.Subscribe(AllEnvironments)
	defer stopAll()
	packaging, stopPackaging := hub.Subscribe("packaging")
	defer stopPackaging()

	require.NoError(t, hub.Publish(context.Background(), events.Event{Type: events.TypeDayLocked, Environment: "production"}))

	got := <-production
	assert.Equal(t, events.TypeDayLocked, got.Type)
	got = <-all
	assert.Equal(t, "production", got.Environment)
	assert.Empty(t, packaging)
	assert.Equal(t, 3, hub.TotalSubscribers())
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("production")
	assert.Equal(t, 1, hub.SubscriberCount("production"))

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.TotalSubscribers())
}

func TestHub_FullSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("production")
	defer cleanup()

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, hub.Publish(context.Background(), events.Event{Environment: "production"}))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_CloseDisconnectsSubscribers(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("production")

	hub.Close()
	cleanup()

	_, open := <-ch
	assert.False(t, open)

	late, _ := hub.Subscribe("production")
	_, open = <-late
	assert.False(t, open)
}
