package memory

import (
	"context"
	"sync"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*EventLog)(nil)

// EventLog records published order events in memory.
type EventLog struct {
	mu     sync.Mutex
	events []ports.OrderEvent
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Publish(_ context.Context, event ports.OrderEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (l *EventLog) Events() []ports.OrderEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.OrderEvent(nil), l.events...)
}
