package kafka

import (
	"context"
	"time"

	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	platformkafka "github.com/Apurer/b2b-ordering-api/internal/platform/messaging/kafka"
)

// EventLowStock is the event type of replenishment alerts.
const EventLowStock = "inventory.low_stock"

var _ ports.AlertPublisher = (*AlertPublisher)(nil)

// AlertPublisher writes low-stock alerts to the inventory topic keyed by item ID.
type AlertPublisher struct {
	writer   platformkafka.MessageWriter
	producer string
	now      func() time.Time
}

func NewAlertPublisher(writer platformkafka.MessageWriter, producer string) *AlertPublisher {
	return &AlertPublisher{writer: writer, producer: producer, now: time.Now}
}

func (p *AlertPublisher) PublishLowStock(ctx context.Context, alert ports.LowStockAlert) error {
	msg, err := platformkafka.NewMessage(ctx, p.producer, EventLowStock, alert.ItemID, alert, p.now())
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}
