package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
)

var (
	ErrNotFound     = errors.New("catalog item not found")
	ErrDuplicateSKU = errors.New("sku already in use")
)

// ItemFilter narrows FindItems. Zero values disable a criterion.
type ItemFilter struct {
	Category string
	Brand    string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
	Skip     int
	Limit    int
}

// Repository persists catalog items.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	// Save inserts or replaces descriptive and pricing data. Implementations
	// keep stored Available/Reserved counters on update.
	Save(ctx context.Context, item *domain.Item) (*domain.Item, error)
	// UpdateStock overwrites the available and reserved counters of an
	// existing item. The replenishment minimum is left as stored.
	UpdateStock(ctx context.Context, id string, stock domain.Stock) error
	Find(ctx context.Context, filter ItemFilter) ([]*domain.Item, error)
	Delete(ctx context.Context, id string) error
}
