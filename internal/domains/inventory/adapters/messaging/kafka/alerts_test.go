package kafka

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	platformkafka "github.com/Apurer/b2b-ordering-api/internal/platform/messaging/kafka"
)

type recordingWriter struct {
	messages []kafkago.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestAlertPublisher_WritesKeyedEnvelope(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewAlertPublisher(writer, "ordering-api")

	alert := ports.LowStockAlert{ItemID: "item-9", Available: 2, Reserved: 8, Minimum: 5, RaisedAt: time.Now().UTC()}
	require.NoError(t, publisher.PublishLowStock(context.Background(), alert))
	require.Len(t, writer.messages, 1)
	require.Equal(t, []byte("item-9"), writer.messages[0].Key)

	env, decoded, err := platformkafka.DecodePayload[ports.LowStockAlert](writer.messages[0].Value)
	require.NoError(t, err)
	require.Equal(t, EventLowStock, env.EventType)
	require.Equal(t, 2, decoded.Available)
	require.Equal(t, 5, decoded.Minimum)
}
