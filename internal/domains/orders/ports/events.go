package ports

import (
	"context"
	"time"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEventLine is the line payload of order events.
type OrderEventLine struct {
	ItemID    string `json:"itemId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

// OrderEvent describes a lifecycle change of an order.
type OrderEvent struct {
	Type           string           `json:"type"`
	OrderID        string           `json:"orderId"`
	OrderNumber    string           `json:"orderNumber"`
	AccountID      string           `json:"accountId"`
	Status         string           `json:"status"`
	PreviousStatus string           `json:"previousStatus,omitempty"`
	Total          string           `json:"total"`
	Lines          []OrderEventLine `json:"lines,omitempty"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

// EventPublisher announces order lifecycle events to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
