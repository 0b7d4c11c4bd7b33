package ports

import (
	"context"

	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
)

// Service exposes order lifecycle use cases to adapters. Every operation
// requires an authenticated caller on ctx.
type Service interface {
	CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListMyOrders(ctx context.Context, input ordertypes.ListOrdersInput) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
}
