package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

type fakeService struct {
	ports.Service
	err error
}

func (f *fakeService) CreateOrder(context.Context, ordertypes.CreateOrderInput) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Order{ID: "order-1", Lines: []domain.Line{{ItemID: "a"}, {ItemID: "b"}}}, nil
}

type fakeReplenishment struct {
	calls [][]string
	err   error
}

func (f *fakeReplenishment) CheckItems(_ context.Context, itemIDs []string) ([]inventoryports.LowStockAlert, error) {
	f.calls = append(f.calls, itemIDs)
	return nil, f.err
}

func TestInlineOrderWorkflows_ChecksReplenishmentAfterPlacement(t *testing.T) {
	monitor := &fakeReplenishment{}
	orchestrator := NewInlineOrderWorkflows(&fakeService{}, monitor, nil)

	order, err := orchestrator.PlaceOrder(context.Background(), ordertypes.CreateOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	require.Len(t, monitor.calls, 1)
	assert.Equal(t, []string{"a", "b"}, monitor.calls[0])
}

func TestInlineOrderWorkflows_ReplenishmentFailureIsNotFatal(t *testing.T) {
	monitor := &fakeReplenishment{err: errors.New("broker down")}
	order, err := NewInlineOrderWorkflows(&fakeService{}, monitor, nil).PlaceOrder(context.Background(), ordertypes.CreateOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
}

func TestInlineOrderWorkflows_SkipsReplenishmentWhenPlacementFails(t *testing.T) {
	boom := errors.New("rejected")
	monitor := &fakeReplenishment{}
	_, err := NewInlineOrderWorkflows(&fakeService{err: boom}, monitor, nil).PlaceOrder(context.Background(), ordertypes.CreateOrderInput{})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, monitor.calls)
}

func TestBuildPlacementWorkflowID(t *testing.T) {
	keyed := buildPlacementWorkflowID(ordertypes.CreateOrderInput{AccountID: "acct-1", IdempotencyKey: "po-1"}, "trace")
	assert.Equal(t, keyed, buildPlacementWorkflowID(ordertypes.CreateOrderInput{AccountID: "acct-1", IdempotencyKey: " po-1 "}, "other"))
	assert.NotEqual(t, keyed, buildPlacementWorkflowID(ordertypes.CreateOrderInput{AccountID: "acct-2", IdempotencyKey: "po-1"}, "trace"))
	assert.Contains(t, keyed, "order-placement-idem-")

	assert.Equal(t, "order-placement-acct-1-trace", buildPlacementWorkflowID(ordertypes.CreateOrderInput{AccountID: "acct-1"}, "trace"))
}
