package orders

import (
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	"github.com/Apurer/b2b-ordering-api/internal/platform/temporal/sequences"
)

const (
	// PlacementTaskQueue is the task queue served by the order worker.
	PlacementTaskQueue = "ORDER_PLACEMENT"
	// PlacementWorkflowName is the registered name of PlacementWorkflow.
	PlacementWorkflowName = "orders.workflows.Placement"
)

// PlacementWorkflowInput carries the placement command plus the trace ID of
// the request that started it.
type PlacementWorkflowInput struct {
	Command ordertypes.CreateOrderInput
	TraceID string
}

// PlacementWorkflow places an order durably.
func PlacementWorkflow(ctx workflow.Context, input PlacementWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement workflow started", "traceId", input.TraceID)
	order, err := sequences.RunOrderPlacementSequence(ctx, input.Command)
	if err != nil {
		logger.Error("order placement workflow failed", "traceId", input.TraceID, "error", err)
		return nil, err
	}
	logger.Info("order placement workflow completed", "orderId", order.ID, "traceId", input.TraceID)
	return order, nil
}
