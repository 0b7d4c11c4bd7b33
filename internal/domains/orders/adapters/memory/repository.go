package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order store enforcing unique order numbers and
// optimistic versioning.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byNumber map[string]string
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}, byNumber: map[string]string{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byNumber[order.Number]; taken {
		return nil, ports.ErrDuplicateOrderNumber
	}
	if _, exists := r.orders[order.ID]; exists {
		return nil, errors.New("order id already exists")
	}
	clone := order.Clone()
	clone.Version = 1
	r.orders[clone.ID] = clone
	r.byNumber[clone.Number] = clone.ID
	return clone.Clone(), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.Version != order.Version {
		return nil, ports.ErrConcurrentModification
	}
	clone := order.Clone()
	clone.Version = stored.Version + 1
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) ListByAccount(_ context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	list := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		list = append(list, order.Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Number > list[j].Number
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if filter.Skip >= len(list) {
		return []*domain.Order{}, nil
	}
	list = list[filter.Skip:]
	if filter.Limit > 0 && filter.Limit < len(list) {
		list = list[:filter.Limit]
	}
	return list, nil
}
