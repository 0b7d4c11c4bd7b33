package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func address() Address {
	return Address{Street: "1 Market St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US"}
}

func TestComputeTotals_FixedTaxAndShipping(t *testing.T) {
	line, err := NewLine("item-1", "Widget", "W-1", 10, decimal.RequireFromString("10.00"))
	require.NoError(t, err)

	totals := ComputeTotals([]Line{line})
	require.True(t, totals.Subtotal.Equal(decimal.RequireFromString("100.00")))
	require.True(t, totals.Tax.Equal(decimal.RequireFromString("10.00")))
	require.True(t, totals.Shipping.Equal(decimal.RequireFromString("15.00")))
	require.True(t, totals.Total.Equal(decimal.RequireFromString("125.00")))
}

func TestNewLine_Validation(t *testing.T) {
	_, err := NewLine("item-1", "", "", 0, decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = NewLine(" ", "", "", 1, decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrMissingItem)

	line, err := NewLine("item-1", "", "", 3, decimal.RequireFromString("2.50"))
	require.NoError(t, err)
	require.True(t, line.Total.Equal(decimal.RequireFromString("7.50")))
}

func TestNewOrder_StartsPending(t *testing.T) {
	line, _ := NewLine("item-1", "Widget", "W-1", 1, decimal.NewFromInt(5))
	now := time.Now()
	order, err := NewOrder("o-1", "acct-1", "ORD-240101-0001", []Line{line}, address(), address(), "invoice", "", now)
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, PaymentPending, order.PaymentStatus)
	require.True(t, order.Totals.Total.Equal(decimal.RequireFromString("20.5")))
}

func TestNewOrder_RequiresCompleteAddresses(t *testing.T) {
	line, _ := NewLine("item-1", "Widget", "W-1", 1, decimal.NewFromInt(5))
	billing := address()
	billing.PostalCode = ""
	_, err := NewOrder("o-1", "acct-1", "n", []Line{line}, address(), billing, "invoice", "", time.Now())
	require.ErrorIs(t, err, ErrIncompleteAddress)
	require.ErrorContains(t, err, "postalCode")
}

func TestTransitions(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusShipped},
		{StatusShipped, StatusDelivered},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusCancelled},
		{StatusShipped, StatusCancelled},
	}
	for _, pair := range allowed {
		require.True(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
	rejected := [][2]Status{
		{StatusPending, StatusShipped},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusPending, StatusPending},
	}
	for _, pair := range rejected {
		require.False(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestTransitionTo_RejectsFromTerminal(t *testing.T) {
	order := &Order{Status: StatusDelivered}
	err := order.TransitionTo(StatusCancelled, time.Now())
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, StatusDelivered, order.Status)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Shipped ")
	require.NoError(t, err)
	require.Equal(t, StatusShipped, s)
	_, err = ParseStatus("lost")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNumberGenerator_Deterministic(t *testing.T) {
	gen := NumberGenerator{
		Now:  func() time.Time { return time.Date(2024, 7, 9, 23, 0, 0, 0, time.UTC) },
		Rand: func(int) int { return 42 },
	}
	require.Equal(t, "ORD-240709-0042", gen.Next())
}
