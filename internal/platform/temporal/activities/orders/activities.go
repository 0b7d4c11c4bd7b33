package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

const (
	// PlaceOrderActivityName prices, reserves, and stores an order.
	PlaceOrderActivityName = "orders.activities.PlaceOrder"
	// CheckReplenishmentActivityName raises low-stock alerts for the ordered items.
	CheckReplenishmentActivityName = "orders.activities.CheckReplenishment"
)

// Activities groups the activities of the placement workflow.
type Activities struct {
	service       orderports.Service
	replenishment inventoryports.Replenishment
}

// NewActivities wires the order service and the replenishment monitor into
// the Temporal activities bundle.
func NewActivities(service orderports.Service, replenishment inventoryports.Replenishment) *Activities {
	return &Activities{service: service, replenishment: replenishment}
}

// PlaceOrder runs CreateOrder on behalf of input.AccountID. The workflow
// always passes an idempotency key, so a retried attempt replays the order
// stored by an earlier one instead of reserving again.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized")
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "accountId", input.AccountID, "lines", len(input.Lines))
	ctx = identity.WithAccount(ctx, input.AccountID)
	order, err := a.service.CreateOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "accountId", input.AccountID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID, "orderNumber", order.Number)
	return order, nil
}

// CheckReplenishment reads stock levels of itemIDs and publishes alerts for
// items at or below their minimum.
func (a *Activities) CheckReplenishment(ctx context.Context, itemIDs []string) ([]inventoryports.LowStockAlert, error) {
	logger := activity.GetLogger(ctx)
	if a == nil {
		return nil, errors.New("replenishment activity not initialized")
	}
	if a.replenishment == nil {
		logger.Info("replenishment monitor not configured; skipping", "items", len(itemIDs))
		return nil, nil
	}
	alerts, err := a.replenishment.CheckItems(ctx, itemIDs)
	if err != nil {
		logger.Error("CheckReplenishment activity failed", "items", len(itemIDs), "error", err)
		return alerts, err
	}
	logger.Info("CheckReplenishment activity completed", "items", len(itemIDs), "alerts", len(alerts))
	return alerts, nil
}
