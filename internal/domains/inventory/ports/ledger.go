package ports

import (
	"context"

	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
)

// Ledger owns the available/reserved counters of catalog items. Operations on
// the same item are serialized; different items never block each other.
type Ledger interface {
	// Reserve fails with *domain.InsufficientStockError and leaves state
	// unchanged when fewer than quantity units are available.
	Reserve(ctx context.Context, itemID string, quantity int) error
	// Release fails with *domain.InvariantViolationError when fewer than
	// quantity units are reserved.
	Release(ctx context.Context, itemID string, quantity int) error
	// Levels returns a snapshot of the item's counters.
	Levels(ctx context.Context, itemID string) (catalogdomain.Stock, error)
}
