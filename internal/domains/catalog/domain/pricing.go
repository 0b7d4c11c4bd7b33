package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned for zero or negative requested quantities.
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// ResolveUnitPrice returns the unit price charged for quantity units of item.
// The highest breakpoint whose minimum quantity is at or below quantity wins;
// the base price applies when none qualifies.
func ResolveUnitPrice(item *Item, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	price := item.Price.Base
	best := 0
	for _, bp := range item.Price.Bulk {
		if bp.MinQuantity <= quantity && bp.MinQuantity >= best {
			best = bp.MinQuantity
			price = bp.UnitPrice
		}
	}
	return price, nil
}
