package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	inventorydomain "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	orderapp "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

type stubOrders struct {
	orderports.Service
	caller identity.Identity
	err    error
}

func (s *stubOrders) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	s.caller, _ = identity.FromContext(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: "order-1", AccountID: s.caller.AccountID, Number: "ORD-240101-0001"}, nil
}

type stubReplenishment struct {
	items []string
}

func (s *stubReplenishment) CheckItems(_ context.Context, itemIDs []string) ([]inventoryports.LowStockAlert, error) {
	s.items = itemIDs
	return []inventoryports.LowStockAlert{{ItemID: itemIDs[0]}}, nil
}

func register(env *testsuite.TestActivityEnvironment, acts *Activities) {
	env.RegisterActivityWithOptions(acts.PlaceOrder, activity.RegisterOptions{Name: PlaceOrderActivityName})
	env.RegisterActivityWithOptions(acts.CheckReplenishment, activity.RegisterOptions{Name: CheckReplenishmentActivityName})
}

func TestPlaceOrder_RunsAsTheRequestingAccount(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	service := &stubOrders{}
	register(env, NewActivities(service, nil))

	value, err := env.ExecuteActivity(PlaceOrderActivityName, ordertypes.CreateOrderInput{AccountID: "acct-7"})
	require.NoError(t, err)
	var order domain.Order
	require.NoError(t, value.Get(&order))
	assert.Equal(t, "acct-7", service.caller.AccountID)
	assert.Equal(t, "acct-7", order.AccountID)
}

func TestPlaceOrder_EncodesBusinessErrors(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	register(env, NewActivities(&stubOrders{err: &orderapp.ItemNotFoundError{ItemID: "ghost"}}, nil))

	_, err := env.ExecuteActivity(PlaceOrderActivityName, ordertypes.CreateOrderInput{AccountID: "acct-7"})
	require.Error(t, err)
	decoded := DecodeError(err)
	var notFound *orderapp.ItemNotFoundError
	require.True(t, errors.As(decoded, &notFound))
	assert.Equal(t, "ghost", notFound.ItemID)
}

func TestCheckReplenishment(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	monitor := &stubReplenishment{}
	register(env, NewActivities(&stubOrders{}, monitor))

	value, err := env.ExecuteActivity(CheckReplenishmentActivityName, []string{"item-1"})
	require.NoError(t, err)
	var alerts []inventoryports.LowStockAlert
	require.NoError(t, value.Get(&alerts))
	assert.Len(t, alerts, 1)
	assert.Equal(t, []string{"item-1"}, monitor.items)
}

func TestErrorCodecKeepsIdentity(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"insufficient stock", &inventorydomain.InsufficientStockError{ItemID: "a", Requested: 2, Available: 1}, inventorydomain.ErrInsufficientStock},
		{"invalid input", errors.Join(orderapp.ErrInvalidInput, domain.ErrEmptyLines), orderapp.ErrInvalidInput},
		{"unauthenticated", identity.ErrUnauthenticated, identity.ErrUnauthenticated},
		{"idempotency conflict", orderports.ErrIdempotencyConflict, orderports.ErrIdempotencyConflict},
		{"invariant", &inventorydomain.InvariantViolationError{ItemID: "a", Released: 3, Reserved: 1}, inventorydomain.ErrInvariantViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeError(tc.err)
			require.ErrorIs(t, DecodeError(encoded), tc.want)
		})
	}

	transient := errors.New("timeout")
	assert.Same(t, transient, EncodeError(transient))
}

func TestDecodeError_KeepsFailuresWithUnreadableDetails(t *testing.T) {
	converter := temporal.GetDefaultFailureConverter()
	sent := temporal.NewNonRetryableApplicationError("out of stock", ErrTypeInsufficientStock, nil, "not a detail struct")
	received := converter.FailureToError(converter.ErrorToFailure(sent))

	decoded := DecodeError(received)
	assert.Same(t, received, decoded)
	assert.False(t, errors.Is(decoded, inventorydomain.ErrInsufficientStock))
}
