package memory

import (
	"context"

	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/keyedlock"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger serializes counter updates per item with an in-process lock and
// stores the result through the catalog repository. It is only safe when
// this process is the sole writer of stock counters.
type Ledger struct {
	catalog catalogports.Repository
	locks   *keyedlock.Locker
}

func NewLedger(catalog catalogports.Repository) *Ledger {
	return &Ledger{catalog: catalog, locks: keyedlock.New()}
}

func (l *Ledger) Reserve(ctx context.Context, itemID string, quantity int) error {
	return l.apply(ctx, itemID, quantity, domain.Reserve)
}

func (l *Ledger) Release(ctx context.Context, itemID string, quantity int) error {
	return l.apply(ctx, itemID, quantity, domain.Release)
}

func (l *Ledger) Levels(ctx context.Context, itemID string) (catalogdomain.Stock, error) {
	item, err := l.catalog.GetByID(ctx, itemID)
	if err != nil {
		return catalogdomain.Stock{}, err
	}
	return item.Stock, nil
}

type movement func(itemID string, stock catalogdomain.Stock, quantity int) (catalogdomain.Stock, error)

func (l *Ledger) apply(ctx context.Context, itemID string, quantity int, move movement) error {
	unlock, err := l.locks.Lock(ctx, itemID)
	if err != nil {
		return err
	}
	defer unlock()

	item, err := l.catalog.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	next, err := move(itemID, item.Stock, quantity)
	if err != nil {
		return err
	}
	return l.catalog.UpdateStock(ctx, itemID, next)
}
