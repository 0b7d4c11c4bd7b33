package ports

import (
	"context"
	"time"
)

// LowStockAlert is raised when an item's available stock drops to or below
// its replenishment minimum.
type LowStockAlert struct {
	ItemID    string    `json:"itemId"`
	Available int       `json:"available"`
	Reserved  int       `json:"reserved"`
	Minimum   int       `json:"minimum"`
	RaisedAt  time.Time `json:"raisedAt"`
}

// AlertPublisher delivers low-stock alerts to purchasing.
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, alert LowStockAlert) error
}

// Replenishment checks items after stock-consuming operations.
type Replenishment interface {
	CheckItems(ctx context.Context, itemIDs []string) ([]LowStockAlert, error)
}
