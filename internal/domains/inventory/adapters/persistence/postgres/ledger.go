package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogpostgres "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger applies counter movements inside a transaction holding a row lock
// on the catalog item, so concurrent processes sharing the database are
// serialized per item.
type Ledger struct {
	db *gorm.DB
}

// NewLedger wires a PostgreSQL-backed ledger. The caller owns the DB lifecycle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Reserve(ctx context.Context, itemID string, quantity int) error {
	return l.apply(ctx, itemID, quantity, domain.Reserve)
}

func (l *Ledger) Release(ctx context.Context, itemID string, quantity int) error {
	return l.apply(ctx, itemID, quantity, domain.Release)
}

func (l *Ledger) Levels(ctx context.Context, itemID string) (catalogdomain.Stock, error) {
	if err := l.ensureDB(); err != nil {
		return catalogdomain.Stock{}, err
	}
	var record catalogpostgres.ItemRecord
	if err := l.db.WithContext(ctx).
		Select("id", "available", "reserved", "min_stock").
		First(&record, "id = ?", itemID).Error; err != nil {
		return catalogdomain.Stock{}, translate(err)
	}
	return stockOf(record), nil
}

func (l *Ledger) apply(ctx context.Context, itemID string, quantity int, move func(string, catalogdomain.Stock, int) (catalogdomain.Stock, error)) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record catalogpostgres.ItemRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "available", "reserved", "min_stock").
			First(&record, "id = ?", itemID).Error; err != nil {
			return translate(err)
		}
		next, err := move(itemID, stockOf(record), quantity)
		if err != nil {
			return err
		}
		return catalogpostgres.UpdateStockTx(tx, itemID, next)
	})
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres inventory ledger not configured")
	}
	return nil
}

func stockOf(record catalogpostgres.ItemRecord) catalogdomain.Stock {
	return catalogdomain.Stock{Available: record.Available, Reserved: record.Reserved, Minimum: record.MinStock}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalogports.ErrNotFound
	}
	return err
}
