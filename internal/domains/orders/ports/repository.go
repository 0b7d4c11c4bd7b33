package ports

import (
	"context"
	"errors"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrderNumber is returned by Create when the order number is taken.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	// ErrConcurrentModification is returned by Update when the stored version
	// no longer matches the version the caller loaded.
	ErrConcurrentModification = errors.New("order was modified concurrently")
)

// ListFilter selects a page of one account's orders.
type ListFilter struct {
	AccountID string
	Status    *domain.Status
	Skip      int
	Limit     int
}

// Repository persists orders. ListByAccount returns newest first.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update stores order if its Version matches the stored one and bumps it.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByAccount(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
}
