package ports

import (
	"context"

	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator runs order placement together with its follow-up steps.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error)
}
