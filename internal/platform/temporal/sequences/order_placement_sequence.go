package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/b2b-ordering-api/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence places the order and then checks the ordered
// items against their replenishment thresholds. A failed check is logged and
// does not fail the placement.
func RunOrderPlacementSequence(ctx workflow.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement sequence started", "accountId", input.AccountID, "lines", len(input.Lines))
	placeOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: orderactivities.NonRetryableErrorTypes,
		},
	}
	checkOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, placeOptions), orderactivities.PlaceOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order placement sequence failed", "accountId", input.AccountID, "error", err)
		return nil, err
	}
	logger.Info("order placement sequence placed", "orderId", order.ID, "orderNumber", order.Number)

	itemIDs := make([]string, 0, len(order.Lines))
	for _, line := range order.Lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	var alerts []inventoryports.LowStockAlert
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, checkOptions), orderactivities.CheckReplenishmentActivityName, itemIDs).Get(ctx, &alerts); err != nil {
		logger.Warn("order placement sequence replenishment check failed", "orderId", order.ID, "error", err)
	} else if len(alerts) > 0 {
		logger.Info("order placement sequence raised low-stock alerts", "orderId", order.ID, "alerts", len(alerts))
	}
	return &order, nil
}
