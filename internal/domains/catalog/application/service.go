package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogtypes "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service orchestrates catalog use cases. Stock counters are owned by the
// inventory ledger and are never written here after creation.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateItem lists a new item with its opening stock.
func (s *Service) CreateItem(ctx context.Context, input catalogtypes.CreateItemInput) (*domain.Item, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	minimum := domain.DefaultMinimum
	if input.Minimum != nil {
		minimum = *input.Minimum
	}
	item, err := domain.NewItem(uuid.NewString(), input.Name, input.SKU, toDomainPrice(input.Price), domain.Stock{
		Available: input.Available,
		Minimum:   minimum,
	})
	if err != nil {
		return nil, mapError(err)
	}
	item.Description = strings.TrimSpace(input.Description)
	item.Category = input.Category
	item.SubCategory = input.SubCategory
	item.Brand = input.Brand
	item.Images = append([]string(nil), input.Images...)
	if err := item.Validate(); err != nil {
		return nil, mapError(err)
	}
	now := s.now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdateItem applies descriptive and pricing changes.
func (s *Service) UpdateItem(ctx context.Context, input catalogtypes.UpdateItemInput) (*domain.Item, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	item, err := s.activeItem(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(item, input); err != nil {
		return nil, mapError(err)
	}
	item.UpdatedAt = s.now().UTC()
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetItem loads a single listed item.
func (s *Service) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.activeItem(ctx, id)
}

// FindItems lists active items matching filter, newest first.
func (s *Service) FindItems(ctx context.Context, filter ports.ItemFilter) ([]*domain.Item, error) {
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)
	items, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// DeleteItem delists an item. The row and its counters stay so that
// pending orders holding reservations on it can still be cancelled.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if _, err := identity.Require(ctx); err != nil {
		return err
	}
	item, err := s.activeItem(ctx, id)
	if err != nil {
		return err
	}
	item.Active = false
	item.UpdatedAt = s.now().UTC()
	if _, err := s.repo.Save(ctx, item); err != nil {
		return mapError(err)
	}
	return nil
}

// activeItem treats delisted items as missing.
func (s *Service) activeItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !item.Active {
		return nil, mapError(ports.ErrNotFound)
	}
	return item, nil
}

func applyUpdate(item *domain.Item, input catalogtypes.UpdateItemInput) error {
	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.SKU != nil {
		item.SKU = *input.SKU
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.SubCategory != nil {
		item.SubCategory = *input.SubCategory
	}
	if input.Brand != nil {
		item.Brand = *input.Brand
	}
	if input.Images != nil {
		item.Images = append([]string(nil), (*input.Images)...)
	}
	if input.Active != nil {
		item.Active = *input.Active
	}
	if input.Price != nil {
		if err := item.ReplacePrice(toDomainPrice(*input.Price)); err != nil {
			return err
		}
	}
	if input.Minimum != nil {
		if err := item.SetMinimum(*input.Minimum); err != nil {
			return err
		}
	}
	return item.Validate()
}

func toDomainPrice(input catalogtypes.PriceInput) domain.Price {
	bulk := make([]domain.BulkBreakpoint, 0, len(input.Bulk))
	for _, bp := range input.Bulk {
		bulk = append(bulk, domain.BulkBreakpoint{MinQuantity: bp.MinQuantity, UnitPrice: bp.UnitPrice})
	}
	return domain.Price{Base: input.Base, Bulk: bulk, Currency: input.Currency}
}

var _ ports.Service = (*Service)(nil)
