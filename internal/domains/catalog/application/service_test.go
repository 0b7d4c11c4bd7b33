package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/memory"
	catalogtypes "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

func authed() context.Context {
	return identity.WithAccount(context.Background(), "acct-1")
}

func newTestService() (*Service, *memory.Repository) {
	repo := memory.NewRepository()
	svc := NewService(repo)
	tick := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, repo
}

func createInput(name, sku string, base string, available int) catalogtypes.CreateItemInput {
	return catalogtypes.CreateItemInput{
		Name:      name,
		SKU:       sku,
		Category:  "pantry",
		Brand:     "Acme",
		Price:     catalogtypes.PriceInput{Base: decimal.RequireFromString(base)},
		Available: available,
	}
}

func TestCreateItem_RequiresIdentity(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateItem(context.Background(), createInput("Rice", "RICE-1", "2.50", 10))
	require.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestCreateItem_AppliesDefaults(t *testing.T) {
	svc, _ := newTestService()
	item, err := svc.CreateItem(authed(), createInput("Rice", "RICE-1", "2.50", 40))
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, domain.DefaultMinimum, item.Stock.Minimum)
	require.Equal(t, 40, item.Stock.Available)
	require.Zero(t, item.Stock.Reserved)
	require.Equal(t, domain.DefaultCurrency, item.Price.Currency)
}

func TestCreateItem_InvalidInput(t *testing.T) {
	svc, _ := newTestService()
	input := createInput("Rice", "RICE-1", "2.50", 10)
	input.Price.Bulk = []catalogtypes.BulkPriceInput{{MinQuantity: 0, UnitPrice: decimal.NewFromInt(1)}}
	_, err := svc.CreateItem(authed(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidBreakpoint)
}

func TestUpdateItem_DoesNotTouchLedgerCounters(t *testing.T) {
	svc, repo := newTestService()
	ctx := authed()
	item, err := svc.CreateItem(ctx, createInput("Rice", "RICE-1", "2.50", 40))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStock(ctx, item.ID, domain.Stock{Available: 30, Reserved: 10, Minimum: 10}))

	name := "Basmati rice"
	minimum := 5
	updated, err := svc.UpdateItem(ctx, catalogtypes.UpdateItemInput{ID: item.ID, Name: &name, Minimum: &minimum})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, domain.Stock{Available: 30, Reserved: 10, Minimum: 5}, updated.Stock)
}

func TestUpdateItem_NotFound(t *testing.T) {
	svc, _ := newTestService()
	name := "x"
	_, err := svc.UpdateItem(authed(), catalogtypes.UpdateItemInput{ID: "missing", Name: &name})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFindItems_FiltersAndPaginates(t *testing.T) {
	svc, _ := newTestService()
	ctx := authed()
	_, err := svc.CreateItem(ctx, createInput("Jasmine rice", "RICE-1", "2.50", 40))
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, createInput("Olive oil", "OIL-1", "9.00", 0))
	require.NoError(t, err)
	newest, err := svc.CreateItem(ctx, createInput("Brown rice", "RICE-2", "3.10", 5))
	require.NoError(t, err)

	items, err := svc.FindItems(ctx, ports.ItemFilter{Search: "RICE"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, newest.ID, items[0].ID)

	items, err = svc.FindItems(ctx, ports.ItemFilter{InStock: true})
	require.NoError(t, err)
	require.Len(t, items, 2)

	maxPrice := decimal.RequireFromString("3.00")
	items, err = svc.FindItems(ctx, ports.ItemFilter{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "RICE-1", items[0].SKU)

	items, err = svc.FindItems(ctx, ports.ItemFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestDeleteItem(t *testing.T) {
	svc, repo := newTestService()
	ctx := authed()
	item, err := svc.CreateItem(ctx, createInput("Rice", "RICE-1", "2.50", 40))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStock(ctx, item.ID, domain.Stock{Available: 35, Reserved: 5}))

	require.ErrorIs(t, svc.DeleteItem(context.Background(), item.ID), identity.ErrUnauthenticated)
	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	_, err = svc.GetItem(ctx, item.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, svc.DeleteItem(ctx, item.ID), ports.ErrNotFound)
	name := "Brown rice"
	_, err = svc.UpdateItem(ctx, catalogtypes.UpdateItemInput{ID: item.ID, Name: &name})
	require.ErrorIs(t, err, ports.ErrNotFound)

	items, err := svc.FindItems(ctx, ports.ItemFilter{})
	require.NoError(t, err)
	require.Empty(t, items)

	// Delisting keeps the row and its counters for outstanding reservations.
	stored, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, stored.Active)
	require.Equal(t, 35, stored.Stock.Available)
	require.Equal(t, 5, stored.Stock.Reserved)
}

func TestCreateItem_RejectsDuplicateSKU(t *testing.T) {
	svc, _ := newTestService()
	ctx := authed()
	_, err := svc.CreateItem(ctx, createInput("Rice", "RICE-1", "2.50", 10))
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, createInput("Other rice", "RICE-1", "2.75", 10))
	require.ErrorIs(t, err, ports.ErrDuplicateSKU)
}
