// Package domain holds the counter arithmetic shared by every ledger adapter.
package domain

import (
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
)

var (
	// ErrInsufficientStock matches any *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvariantViolation matches any *InvariantViolationError.
	ErrInvariantViolation = errors.New("inventory invariant violation")
	// ErrInvalidQuantity rejects zero or negative ledger movements.
	ErrInvalidQuantity = errors.New("ledger quantity must be greater than zero")
)

// InsufficientStockError reports a reservation that exceeded available stock.
type InsufficientStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvariantViolationError reports a release that would drive reserved below zero.
type InvariantViolationError struct {
	ItemID   string
	Released int
	Reserved int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("cannot release %d units of item %s: only %d reserved", e.Released, e.ItemID, e.Reserved)
}

func (e *InvariantViolationError) Is(target error) bool { return target == ErrInvariantViolation }

// Reserve moves quantity from available to reserved. The input is returned
// unchanged alongside the error on failure.
func Reserve(itemID string, stock catalogdomain.Stock, quantity int) (catalogdomain.Stock, error) {
	if quantity <= 0 {
		return stock, ErrInvalidQuantity
	}
	if stock.Available < quantity {
		return stock, &InsufficientStockError{ItemID: itemID, Requested: quantity, Available: stock.Available}
	}
	stock.Available -= quantity
	stock.Reserved += quantity
	return stock, nil
}

// Release moves quantity from reserved back to available. It never clamps.
func Release(itemID string, stock catalogdomain.Stock, quantity int) (catalogdomain.Stock, error) {
	if quantity <= 0 {
		return stock, ErrInvalidQuantity
	}
	if stock.Reserved < quantity {
		return stock, &InvariantViolationError{ItemID: itemID, Released: quantity, Reserved: stock.Reserved}
	}
	stock.Reserved -= quantity
	stock.Available += quantity
	return stock, nil
}
