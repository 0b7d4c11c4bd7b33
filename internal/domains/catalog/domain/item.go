package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency applies when an item is created without a currency code.
const DefaultCurrency = "USD"

// DefaultMinimum is the replenishment threshold used when none is supplied.
const DefaultMinimum = 10

var (
	ErrEmptyName           = errors.New("item name is required")
	ErrEmptySKU            = errors.New("item sku is required")
	ErrInvalidBasePrice    = errors.New("base price must not be negative")
	ErrInvalidBreakpoint   = errors.New("bulk breakpoint requires a positive minimum quantity and a non-negative price")
	ErrDuplicateBreakpoint = errors.New("bulk breakpoints must have distinct minimum quantities")
	ErrInvalidCurrency     = errors.New("currency must be a three letter code")
	ErrNegativeStock       = errors.New("stock counters must not be negative")
)

// BulkBreakpoint is a tiered unit price that applies from MinQuantity upwards.
type BulkBreakpoint struct {
	MinQuantity int
	UnitPrice   decimal.Decimal
}

// Price holds the base unit price and its bulk tiers, kept sorted ascending
// by MinQuantity.
type Price struct {
	Base     decimal.Decimal
	Bulk     []BulkBreakpoint
	Currency string
}

// Stock are the inventory counters of an item. Only the inventory ledger
// mutates Available and Reserved.
type Stock struct {
	Available int
	Reserved  int
	Minimum   int
}

// OnHand is the total physical stock.
func (s Stock) OnHand() int { return s.Available + s.Reserved }

// BelowMinimum reports whether the item should be replenished.
func (s Stock) BelowMinimum() bool { return s.Available <= s.Minimum }

// Validate checks the non-negativity invariant.
func (s Stock) Validate() error {
	if s.Available < 0 || s.Reserved < 0 || s.Minimum < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Item is the catalog aggregate.
type Item struct {
	ID          string
	Name        string
	Description string
	SKU         string
	Category    string
	SubCategory string
	Brand       string
	Images      []string
	Price       Price
	Stock       Stock
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem builds an active item with normalized pricing.
func NewItem(id, name, sku string, price Price, stock Stock) (*Item, error) {
	item := &Item{ID: id, Name: name, SKU: sku, Price: price, Stock: stock, Active: true}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate normalizes the aggregate and enforces its invariants.
func (i *Item) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.SKU = strings.TrimSpace(i.SKU)
	i.Category = strings.TrimSpace(i.Category)
	i.SubCategory = strings.TrimSpace(i.SubCategory)
	i.Brand = strings.TrimSpace(i.Brand)
	if i.Name == "" {
		return ErrEmptyName
	}
	if i.SKU == "" {
		return ErrEmptySKU
	}
	if err := i.Price.normalize(); err != nil {
		return err
	}
	return i.Stock.Validate()
}

// ReplacePrice swaps the pricing table after validating it.
func (i *Item) ReplacePrice(price Price) error {
	if err := price.normalize(); err != nil {
		return err
	}
	i.Price = price
	return nil
}

// SetMinimum updates the replenishment threshold.
func (i *Item) SetMinimum(minimum int) error {
	if minimum < 0 {
		return ErrNegativeStock
	}
	i.Stock.Minimum = minimum
	return nil
}

func (p *Price) normalize() error {
	if p.Base.IsNegative() {
		return ErrInvalidBasePrice
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if len(p.Currency) != 3 {
		return ErrInvalidCurrency
	}
	bulk := make([]BulkBreakpoint, len(p.Bulk))
	copy(bulk, p.Bulk)
	sort.SliceStable(bulk, func(a, b int) bool { return bulk[a].MinQuantity < bulk[b].MinQuantity })
	for idx, bp := range bulk {
		if bp.MinQuantity <= 0 || bp.UnitPrice.IsNegative() {
			return ErrInvalidBreakpoint
		}
		if idx > 0 && bulk[idx-1].MinQuantity == bp.MinQuantity {
			return ErrDuplicateBreakpoint
		}
	}
	p.Bulk = bulk
	return nil
}
