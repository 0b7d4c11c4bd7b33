package memory

import (
	"context"
	"sync"

	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
)

var _ ports.AlertPublisher = (*AlertLog)(nil)

// AlertLog keeps published alerts in memory. Used when Kafka is not configured.
type AlertLog struct {
	mu     sync.Mutex
	alerts []ports.LowStockAlert
}

func NewAlertLog() *AlertLog {
	return &AlertLog{}
}

func (l *AlertLog) PublishLowStock(_ context.Context, alert ports.LowStockAlert) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = append(l.alerts, alert)
	return nil
}

// Alerts returns a copy of everything published so far.
func (l *AlertLog) Alerts() []ports.LowStockAlert {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.LowStockAlert(nil), l.alerts...)
}
