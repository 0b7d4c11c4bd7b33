package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog adapter.
type Repository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

func NewRepository() *Repository {
	return &Repository{items: map[string]*domain.Item{}}
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneItem(item), nil
}

func (r *Repository) Save(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	if item.ID == "" {
		return nil, errors.New("item id is required")
	}
	clone := cloneItem(item)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, other := range r.items {
		if id != clone.ID && other.SKU == clone.SKU {
			return nil, ports.ErrDuplicateSKU
		}
	}
	if existing, ok := r.items[clone.ID]; ok {
		clone.Stock.Available = existing.Stock.Available
		clone.Stock.Reserved = existing.Stock.Reserved
		clone.CreatedAt = existing.CreatedAt
	}
	r.items[clone.ID] = clone
	return cloneItem(clone), nil
}

func (r *Repository) UpdateStock(_ context.Context, id string, stock domain.Stock) error {
	if err := stock.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return ports.ErrNotFound
	}
	item.Stock.Available = stock.Available
	item.Stock.Reserved = stock.Reserved
	return nil
}

func (r *Repository) Find(_ context.Context, filter ports.ItemFilter) ([]*domain.Item, error) {
	r.mu.RLock()
	matched := make([]*domain.Item, 0, len(r.items))
	for _, item := range r.items {
		if matches(item, filter) {
			matched = append(matched, cloneItem(item))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Skip >= len(matched) {
		return []*domain.Item{}, nil
	}
	matched = matched[filter.Skip:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func matches(item *domain.Item, filter ports.ItemFilter) bool {
	if !item.Active {
		return false
	}
	if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
		return false
	}
	if filter.Brand != "" && !strings.EqualFold(item.Brand, filter.Brand) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(item.Name), needle) &&
			!strings.Contains(strings.ToLower(item.Description), needle) {
			return false
		}
	}
	if filter.MinPrice != nil && item.Price.Base.LessThan(*filter.MinPrice) {
		return false
	}
	if filter.MaxPrice != nil && item.Price.Base.GreaterThan(*filter.MaxPrice) {
		return false
	}
	if filter.InStock && item.Stock.Available <= 0 {
		return false
	}
	return true
}

func cloneItem(item *domain.Item) *domain.Item {
	clone := *item
	clone.Images = append([]string(nil), item.Images...)
	clone.Price.Bulk = append([]domain.BulkBreakpoint(nil), item.Price.Bulk...)
	return &clone
}
