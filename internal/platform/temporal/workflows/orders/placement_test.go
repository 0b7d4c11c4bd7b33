package orders

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	inventorydomain "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/b2b-ordering-api/internal/platform/temporal/activities/orders"
)

func placedOrder() *domain.Order {
	price := decimal.RequireFromString("8.00")
	return &domain.Order{
		ID:        "order-1",
		AccountID: "acct-1",
		Number:    "ORD-240709-0042",
		Status:    domain.StatusPending,
		Lines: []domain.Line{
			{ItemID: "item-1", Quantity: 12, UnitPrice: price, Total: price.Mul(decimal.NewFromInt(12))},
			{ItemID: "item-2", Quantity: 1, UnitPrice: price, Total: price},
		},
		CreatedAt: time.Date(2024, 7, 9, 10, 0, 0, 0, time.UTC),
	}
}

func command() PlacementWorkflowInput {
	return PlacementWorkflowInput{
		Command: ordertypes.CreateOrderInput{
			IdempotencyKey: "po-1",
			AccountID:      "acct-1",
			Lines:          []ordertypes.LineInput{{ItemID: "item-1", Quantity: 12}, {ItemID: "item-2", Quantity: 1}},
			PaymentMethod:  "invoice",
		},
		TraceID: "trace-1",
	}
}

func TestPlacementWorkflow_PlacesAndChecksReplenishment(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	var checked []string
	env.RegisterActivityWithOptions(func(_ context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
		require.Equal(t, "acct-1", input.AccountID)
		return placedOrder(), nil
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	env.RegisterActivityWithOptions(func(_ context.Context, itemIDs []string) ([]inventoryports.LowStockAlert, error) {
		checked = itemIDs
		return []inventoryports.LowStockAlert{{ItemID: "item-1", Available: 3, Minimum: 5}}, nil
	}, activity.RegisterOptions{Name: orderactivities.CheckReplenishmentActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, command())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var order domain.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	assert.Equal(t, "ORD-240709-0042", order.Number)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("8.00")))
	assert.Equal(t, []string{"item-1", "item-2"}, checked)
}

func TestPlacementWorkflow_BusinessErrorsAreNotRetried(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	var attempts atomic.Int32
	env.RegisterActivityWithOptions(func(context.Context, ordertypes.CreateOrderInput) (*domain.Order, error) {
		attempts.Add(1)
		return nil, orderactivities.EncodeError(&inventorydomain.InsufficientStockError{ItemID: "item-1", Requested: 12, Available: 4})
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	env.RegisterActivityWithOptions(func(context.Context, []string) ([]inventoryports.LowStockAlert, error) {
		t.Fatal("replenishment must not run after a failed placement")
		return nil, nil
	}, activity.RegisterOptions{Name: orderactivities.CheckReplenishmentActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, command())
	require.True(t, env.IsWorkflowCompleted())
	err := orderactivities.DecodeError(env.GetWorkflowError())
	require.ErrorIs(t, err, inventorydomain.ErrInsufficientStock)

	var insufficient *inventorydomain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "item-1", insufficient.ItemID)
	assert.Equal(t, 12, insufficient.Requested)
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestPlacementWorkflow_TransientErrorsAreRetried(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	var attempts atomic.Int32
	env.RegisterActivityWithOptions(func(context.Context, ordertypes.CreateOrderInput) (*domain.Order, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("connection reset")
		}
		return placedOrder(), nil
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	env.RegisterActivityWithOptions(func(context.Context, []string) ([]inventoryports.LowStockAlert, error) {
		return nil, nil
	}, activity.RegisterOptions{Name: orderactivities.CheckReplenishmentActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, command())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, int32(3), attempts.Load())
}

func TestPlacementWorkflow_ReplenishmentFailureKeepsOrder(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(func(context.Context, ordertypes.CreateOrderInput) (*domain.Order, error) {
		return placedOrder(), nil
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	env.RegisterActivityWithOptions(func(context.Context, []string) ([]inventoryports.LowStockAlert, error) {
		return nil, errors.New("broker down")
	}, activity.RegisterOptions{Name: orderactivities.CheckReplenishmentActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, command())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var order domain.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	assert.Equal(t, "order-1", order.ID)
}
