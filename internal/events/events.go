// Package events defines the index-mutation events published to Kafka.
// Consumers use them to invalidate stale search caches and to observe
// indexing activity without polling.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/docfind/docfind/pkg/kafka"
)

// EventType identifies what happened to the index.
type EventType string

const (
	EventIndexed   EventType = "document_indexed"
	EventDeindexed EventType = "document_deindexed"
	EventRebuilt   EventType = "index_rebuilt"
)

// IndexEvent is emitted after every successful index mutation.
type IndexEvent struct {
	Type      EventType `json:"type"`
	DocID     string    `json:"doc_id,omitempty"`
	DocCount  int       `json:"doc_count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits IndexEvents to Kafka. Publishing is best-effort: an
// unreachable broker is logged, never surfaced to the indexing caller, so an
// index mutation cannot fail on the event path.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "index-events"),
	}
}

func (p *Publisher) Publish(ctx context.Context, event IndexEvent) {
	if p == nil || p.producer == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	key := event.DocID
	if key == "" {
		key = string(event.Type)
	}
	if err := p.producer.Publish(ctx, kafka.Event{Key: key, Value: event}); err != nil {
		p.logger.Error("failed to publish index event", "type", event.Type, "doc_id", event.DocID, "error", err)
	}
}

// InvalidationHandler returns a Kafka message handler that calls invalidate
// for every index event. Wired to the query cache by the composing binary.
func InvalidationHandler(invalidate func(ctx context.Context) error) kafka.MessageHandler {
	return func(ctx context.Context, key, value []byte) error {
		event, err := kafka.DecodeJSON[IndexEvent](value)
		if err != nil {
			return err
		}
		slog.Debug("index event received", "type", event.Type, "doc_id", event.DocID)
		return invalidate(ctx)
	}
}
