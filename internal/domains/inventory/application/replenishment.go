package application

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
)

// Replenishment raises low-stock alerts. It only reads ledger state.
type Replenishment struct {
	ledger    ports.Ledger
	publisher ports.AlertPublisher
	now       func() time.Time
}

func NewReplenishment(ledger ports.Ledger, publisher ports.AlertPublisher) *Replenishment {
	return &Replenishment{ledger: ledger, publisher: publisher, now: time.Now}
}

// CheckItems publishes an alert for every listed item whose available stock
// is at or below its minimum. Each item is checked once even if repeated.
// Lookup and publish failures are joined; alerts already sent stay sent.
func (r *Replenishment) CheckItems(ctx context.Context, itemIDs []string) ([]ports.LowStockAlert, error) {
	seen := make(map[string]struct{}, len(itemIDs))
	var (
		alerts []ports.LowStockAlert
		errs   []error
	)
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		stock, err := r.ledger.Levels(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !stock.BelowMinimum() {
			continue
		}
		alert := ports.LowStockAlert{
			ItemID:    id,
			Available: stock.Available,
			Reserved:  stock.Reserved,
			Minimum:   stock.Minimum,
			RaisedAt:  r.now().UTC(),
		}
		if err := r.publisher.PublishLowStock(ctx, alert); err != nil {
			errs = append(errs, err)
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, errors.Join(errs...)
}

var _ ports.Replenishment = (*Replenishment)(nil)
