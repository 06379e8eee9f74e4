package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPublisher_StampsEvents(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Publish(context.Background(), Event{Type: TypeDayLocked, Environment: "packaging", Date: "2024-02-01"}))

	got := m.Events()
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].OccurredAt.IsZero())
	assert.Equal(t, TypeDayLocked, got[0].Type)
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(_ context.Context, _ Event) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() {}

func TestEmit_SwallowsErrors(t *testing.T) {
	f := &failingPublisher{}
	assert.NotPanics(t, func() {
		Emit(context.Background(), f, Event{Type: TypeAssignmentDeleted})
		Emit(context.Background(), nil, Event{Type: TypeAssignmentDeleted})
	})
	assert.Equal(t, 1, f.calls)
}

func TestNATSPublisher_Subject(t *testing.T) {
	p := NewNATSPublisherWithConn(nil, "")
	assert.Equal(t, "roster.packaging.day.locked", p.Subject(Event{Type: TypeDayLocked, Environment: "packaging"}))
	assert.Equal(t, "roster.all.crew.scheduled", p.Subject(Event{Type: TypeCrewScheduled}))
}

func runNATSServer(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	require.True(t, ns.ReadyForConnections(10*time.Second))
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := runNATSServer(t)

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("roster-test.packaging.>", received)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p, err := NewNATSPublisher(url, "roster-test")
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Publish(context.Background(), Event{Type: TypeAssignmentUpserted, Environment: "packaging", Date: "2024-02-01"}))

	select {
	case msg := <-received:
		assert.Equal(t, "roster-test.packaging.assignment.upserted", msg.Subject)
		var ev Event
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		assert.Equal(t, "2024-02-01", ev.Date)
		assert.Equal(t, ev.ID, msg.Header.Get(nats.MsgIdHdr))
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	p, err := NewNATSPublisher(runNATSServer(t), "")
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, Event{Type: TypeDayLocked}), context.Canceled)
}

func TestMulti_SameIDForEverySink(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	failing := &failingPublisher{}
	multi := NewMulti(a, failing, b)

	err := multi.Publish(context.Background(), Event{Type: TypeAssignmentUpserted, Environment: "production"})
	require.Error(t, err)
	assert.Equal(t, 1, failing.calls)

	require.Len(t, a.Events(), 1)
	require.Len(t, b.Events(), 1)
	assert.Equal(t, a.Events()[0].ID, b.Events()[0].ID)
}
