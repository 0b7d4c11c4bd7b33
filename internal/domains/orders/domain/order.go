package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var (
	TaxRate      = decimal.RequireFromString("0.10")
	ShippingCost = decimal.RequireFromString("15.00")
)

var (
	ErrInvalidStatus               = errors.New("unknown order status")
	ErrInvalidTransition           = errors.New("invalid order status transition")
	ErrInvalidStateForCancellation = errors.New("only pending orders can be cancelled")
	ErrEmptyLines                  = errors.New("order must contain at least one line")
	ErrInvalidQuantity             = errors.New("line quantity must be greater than zero")
	ErrMissingItem                 = errors.New("line item id is required")
	ErrMissingAccount              = errors.New("order account is required")
	ErrMissingPaymentMethod        = errors.New("payment method is required")
	ErrIncompleteAddress           = errors.New("address is incomplete")
)

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

// ParseStatus validates a textual status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from → to is an allowed lifecycle move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Address is an immutable postal snapshot.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Validate requires every field.
func (a Address) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteAddress, strings.Join(missing, ", "))
	}
	return nil
}

// Line is one priced position of an order.
type Line struct {
	ItemID    string
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// NewLine snapshots the price charged for quantity units.
func NewLine(itemID, name, sku string, quantity int, unitPrice decimal.Decimal) (Line, error) {
	if strings.TrimSpace(itemID) == "" {
		return Line{}, ErrMissingItem
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	return Line{
		ItemID:    itemID,
		Name:      name,
		SKU:       sku,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Totals are derived once at creation and never recomputed.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals applies the fixed tax rate and flat shipping fee.
func ComputeTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total)
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: ShippingCost,
		Total:    subtotal.Add(tax).Add(ShippingCost),
	}
}

// Order is the order aggregate.
type Order struct {
	ID              string
	AccountID       string
	Number          string
	Lines           []Line
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMethod   string
	ShippingAddress Address
	BillingAddress  Address
	Totals          Totals
	Notes           string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder assembles a pending order and derives its totals.
func NewOrder(id, accountID, number string, lines []Line, shipping, billing Address, paymentMethod, notes string, now time.Time) (*Order, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrMissingAccount
	}
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return nil, ErrMissingPaymentMethod
	}
	if err := shipping.Validate(); err != nil {
		return nil, fmt.Errorf("shipping %w", err)
	}
	if err := billing.Validate(); err != nil {
		return nil, fmt.Errorf("billing %w", err)
	}
	owned := append([]Line(nil), lines...)
	return &Order{
		ID:              id,
		AccountID:       accountID,
		Number:          number,
		Lines:           owned,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   strings.TrimSpace(paymentMethod),
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Totals:          ComputeTotals(owned),
		Notes:           strings.TrimSpace(notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// TransitionTo moves the order to next, rejecting moves outside the lifecycle.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// OwnedBy reports whether accountID placed the order.
func (o *Order) OwnedBy(accountID string) bool {
	return o.AccountID == accountID
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}
