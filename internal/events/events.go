// AngelaMos | 2026
// events.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nhpc-ltd/blog-api/internal/config"
)

const (
	PostCreated     = "post.created"
	PostUpdated     = "post.updated"
	PostDeleted     = "post.deleted"
	PostPublished   = "post.published"
	PostRejected    = "post.rejected"
	PostUnpublished = "post.unpublished"
	PostLiked       = "post.liked"
	PostUnliked     = "post.unliked"

	CategoryChanged = "category.changed"
)

// Event is the payload published for every content mutation.
type Event struct {
	Type     string    `json:"type"`
	PostID   string    `json:"postId,omitempty"`
	AuthorID string    `json:"authorId,omitempty"`
	Status   string    `json:"status,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func Connect(cfg config.NATSConfig, appName string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(
		cfg.URL,
		nats.Name(appName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return NewNATSPublisher(nc, cfg.SubjectPrefix), nil
}

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "blog"
	}
	return &NATSPublisher{conn: nc, prefix: prefix}
}

func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(_ context.Context, evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(evt.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Ping reports whether the connection is currently up. Used by readiness.
func (p *NATSPublisher) Ping(context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection %s", p.conn.Status())
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Nop drops every event. Used when NATS is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
