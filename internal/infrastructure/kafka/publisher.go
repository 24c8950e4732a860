package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	pkgkafka "github.com/suhailma1ik/KinCashBackend/pkg/kafka"
)

// EventPublisher publishes domain events to a Kafka topic, keyed by
// aggregate id so all events of one loan land on the same partition in
// order.
type EventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewEventPublisher creates a Kafka-backed event publisher.
func NewEventPublisher(producer *pkgkafka.Producer, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish serializes the events as JSON and sends them to the topic.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.EventType(), err)
		}
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(ev.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type":     ev.EventType(),
				"event_id":       ev.EventID(),
				"aggregate_type": ev.AggregateType(),
			},
		})
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return err
	}
	for _, ev := range events {
		p.logger.DebugContext(ctx, "event published",
			slog.String("event_type", ev.EventType()),
			slog.String("aggregate_id", ev.AggregateID()),
		)
	}
	return nil
}
