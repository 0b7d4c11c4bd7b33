package kafka

import (
	"context"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/b2b-ordering-api/internal/platform/messaging/kafka"
)

var _ ports.EventPublisher = (*EventPublisher)(nil)

// EventPublisher writes order lifecycle events keyed by order ID so every
// event of one order lands on the same partition.
type EventPublisher struct {
	writer   platformkafka.MessageWriter
	producer string
}

func NewEventPublisher(writer platformkafka.MessageWriter, producer string) *EventPublisher {
	return &EventPublisher{writer: writer, producer: producer}
}

func (p *EventPublisher) Publish(ctx context.Context, event ports.OrderEvent) error {
	msg, err := platformkafka.NewMessage(ctx, p.producer, event.Type, event.OrderID, event, event.OccurredAt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}
