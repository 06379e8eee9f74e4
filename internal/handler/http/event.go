package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/response"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/sse"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

const streamKeepalive = 30 * time.Second

type EventHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type EventHandlerImpl struct {
	hub *sse.Hub
}

func NewEventHandler(hub *sse.Hub) EventHandler {
	return &EventHandlerImpl{
		hub: hub,
	}
}

// Stream implements EventHandler. It writes roster events for the requested
// environment, or all environments, as server-sent events.
func (h *EventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	environment := r.URL.Query().Get("environment")
	if environment != "" && !validator.IsValidEnvironment(environment) {
		response.ValidationError(w, map[string]string{"environment": "environment must be a lowercase identifier"})
		return
	}

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	events, cleanup := h.hub.Subscribe(environment)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"environment\":%q}\n\n", environment)
	if err := rc.Flush(); err != nil {
		slog.Error("event stream flush unsupported", "error", err)
		return
	}

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("event stream marshal error", "type", ev.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
			if err := rc.Flush(); err != nil {
				return
			}

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			if err := rc.Flush(); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
