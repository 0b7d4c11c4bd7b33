// Package kafka holds the event envelope and writer shared by the Kafka
// publishing adapters.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

const envelopeVersion = 1

// Envelope wraps every event written by this service.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// MessageWriter is the subset of *kafka.Writer used by publishers.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NewMessage builds a keyed message carrying payload inside an Envelope.
// The correlation ID doubles as the partition key.
func NewMessage(ctx context.Context, producer, eventType, correlationID string, payload any, now time.Time) (kafkago.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    now.UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       body,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		env.TraceID = sc.TraceID().String()
	}
	value, err := json.Marshal(env)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode %s envelope: %w", eventType, err)
	}
	return kafkago.Message{
		Key:   []byte(correlationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}, nil
}

// DecodePayload unmarshals the payload of an envelope into T.
func DecodePayload[T any](value []byte) (Envelope, T, error) {
	var (
		env Envelope
		out T
	)
	if err := json.Unmarshal(value, &env); err != nil {
		return env, out, fmt.Errorf("decode envelope: %w", err)
	}
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return env, out, fmt.Errorf("decode payload: %w", err)
	}
	return env, out, nil
}
