// Package events publishes roster change notifications after commit.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TypeAssignmentUpserted = "assignment.upserted"
	TypeAssignmentDeleted  = "assignment.deleted"
	TypeDayLocked          = "day.locked"
	TypeCrewOverridden     = "crew.overridden"
	TypeCrewScheduled      = "crew.scheduled"
)

type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Environment string    `json:"environment"`
	Date        string    `json:"date"`
	OccurredAt  time.Time `json:"occurred_at"`
	Actor       string    `json:"actor,omitempty"`
	Payload     any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// stamp fills the id and timestamp of an event that lacks them.
func stamp(ev Event) Event {
	if ev.ID == "" {
		if id, err := uuid.NewV7(); err == nil {
			ev.ID = id.String()
		} else {
			ev.ID = uuid.NewString()
		}
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return ev
}

// Emit publishes ev and logs a failure instead of returning it. The roster
// change has already committed when Emit runs.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish roster event", "type", ev.Type, "environment", ev.Environment, "date", ev.Date, "error", err)
	}
}

type nopPublisher struct{}

func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(_ context.Context, _ Event) error { return nil }

func (nopPublisher) Close() {}

type multiPublisher []Publisher

// NewMulti publishes every event to each of pubs, stamping it once so all
// sinks see the same id.
func NewMulti(pubs ...Publisher) Publisher {
	return multiPublisher(pubs)
}

func (m multiPublisher) Publish(ctx context.Context, ev Event) error {
	ev = stamp(ev)
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiPublisher) Close() {
	for _, p := range m {
		p.Close()
	}
}

// MemoryPublisher keeps published events in order. Used by tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (m *MemoryPublisher) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stamp(ev))
	return nil
}

func (m *MemoryPublisher) Close() {}

func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
