package ports

import (
	"context"

	catalogtypes "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	CreateItem(ctx context.Context, input catalogtypes.CreateItemInput) (*domain.Item, error)
	UpdateItem(ctx context.Context, input catalogtypes.UpdateItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	FindItems(ctx context.Context, filter ItemFilter) ([]*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
}
