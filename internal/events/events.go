// Package events publishes item lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/erazemk/recyclehub/internal/model"
)

// Subjects.
const (
	SubjectItemCreated  = "items.created"
	SubjectItemRecycled = "items.recycled"
	SubjectItemDeleted  = "items.deleted"
)

// ItemEvent is the payload of every item subject.
type ItemEvent struct {
	ItemID  string      `json:"item_id"`
	ActorID string      `json:"actor_id,omitempty"`
	Item    *model.Item `json:"item,omitempty"`
	At      time.Time   `json:"at"`
}

// Publisher sends an event on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, event ItemEvent) error
}

// Nop discards events.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, string, ItemEvent) error { return nil }

// NATSPublisher publishes JSON-encoded events to a NATS server.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("recyclehub"))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish encodes event and publishes it on subject.
func (p *NATSPublisher) Publish(_ context.Context, subject string, event ItemEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
