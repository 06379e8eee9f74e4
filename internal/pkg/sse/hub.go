// Package sse fans roster events out to server-sent event subscribers.
package sse

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
)

// AllEnvironments subscribes to every environment's events.
const AllEnvironments = ""

const subscriberBuffer = 16

// Hub keeps subscribers per environment. It implements events.Publisher so
// it can sit next to the NATS publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan events.Event]struct{}
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan events.Event]struct{}),
	}
}

// Subscribe registers a subscriber for environment and returns its channel
// and a cleanup func. The channel is closed by cleanup or by Close.
func (h *Hub) Subscribe(environment string) (<-chan events.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan events.Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	if h.subscribers[environment] == nil {
		h.subscribers[environment] = make(map[chan events.Event]struct{})
	}
	h.subscribers[environment][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			subs, ok := h.subscribers[environment]
			if !ok {
				return
			}
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(h.subscribers, environment)
			}
		})
	}
	return ch, cleanup
}

// Publish implements events.Publisher. Slow subscribers drop events rather
// than block the writer.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.send(h.subscribers[ev.Environment], ev)
	if ev.Environment != AllEnvironments {
		h.send(h.subscribers[AllEnvironments], ev)
	}
	return nil
}

func (h *Hub) send(subs map[chan events.Event]struct{}, ev events.Event) {
	for ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close implements events.Publisher and disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for env, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, env)
	}
	h.closed = true
}

// SubscriberCount returns the number of subscribers for an environment.
func (h *Hub) SubscriberCount(environment string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[environment])
}

// TotalSubscribers returns the number of subscribers across environments.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
