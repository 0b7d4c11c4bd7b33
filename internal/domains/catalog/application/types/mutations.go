package types

import "github.com/shopspring/decimal"

// BulkPriceInput is one tier of a bulk pricing table.
type BulkPriceInput struct {
	MinQuantity int
	UnitPrice   decimal.Decimal
}

// PriceInput describes a complete pricing table.
type PriceInput struct {
	Base     decimal.Decimal
	Bulk     []BulkPriceInput
	Currency string
}

// CreateItemInput captures a new catalog listing with its opening stock.
type CreateItemInput struct {
	Name        string
	Description string
	SKU         string
	Category    string
	SubCategory string
	Brand       string
	Images      []string
	Price       PriceInput
	Available   int
	Minimum     *int
}

// UpdateItemInput applies a partial update. Stock counters other than the
// replenishment minimum are not reachable from here.
type UpdateItemInput struct {
	ID          string
	Name        *string
	Description *string
	SKU         *string
	Category    *string
	SubCategory *string
	Brand       *string
	Images      *[]string
	Price       *PriceInput
	Minimum     *int
	Active      *bool
}
