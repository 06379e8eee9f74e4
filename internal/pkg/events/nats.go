package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events as JSON on "<prefix>.<environment>.<type>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("labor-roster"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return NewNATSPublisherWithConn(conn, prefix), nil
}

func NewNATSPublisherWithConn(conn *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "roster"
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(ev Event) string {
	env := ev.Environment
	if env == "" {
		env = "all"
	}
	return strings.Join([]string{p.prefix, env, ev.Type}, ".")
}

func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev = stamp(ev)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", ev.Type, err)
	}
	msg := nats.NewMsg(p.Subject(ev))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, ev.ID)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", ev.Type, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		slog.Warn("nats drain failed", "error", err)
		p.conn.Close()
	}
}
