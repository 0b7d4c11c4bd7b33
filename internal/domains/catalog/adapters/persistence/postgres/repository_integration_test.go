//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	"github.com/Apurer/b2b-ordering-api/internal/platform/postgres/pgtest"
)

func newItem(t *testing.T, name, sku string, available int) *domain.Item {
	t.Helper()
	item, err := domain.NewItem(uuid.NewString(), name, sku, domain.Price{
		Base: decimal.RequireFromString("10.00"),
		Bulk: []domain.BulkBreakpoint{{MinQuantity: 5, UnitPrice: decimal.RequireFromString("9.00")}},
	}, domain.Stock{Available: available, Minimum: 3})
	require.NoError(t, err)
	item.Images = []string{"https://cdn.example.com/" + sku + ".png"}
	item.CreatedAt = time.Now().UTC()
	return item
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	item := newItem(t, "Olive oil", "OIL-1", 12)
	_, err := repo.Save(ctx, item)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Name, fetched.Name)
	assert.Equal(t, item.Images, fetched.Images)
	require.Len(t, fetched.Price.Bulk, 1)
	assert.True(t, fetched.Price.Bulk[0].UnitPrice.Equal(decimal.RequireFromString("9.00")))
	assert.Equal(t, 12, fetched.Stock.Available)
}

func TestRepository_SaveKeepsLedgerCounters(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	item := newItem(t, "Olive oil", "OIL-1", 12)
	_, err := repo.Save(ctx, item)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStock(ctx, item.ID, domain.Stock{Available: 7, Reserved: 5, Minimum: 3}))

	item.Name = "Extra virgin olive oil"
	item.Stock = domain.Stock{Available: 100, Minimum: 4}
	saved, err := repo.Save(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "Extra virgin olive oil", saved.Name)
	assert.Equal(t, domain.Stock{Available: 7, Reserved: 5, Minimum: 4}, saved.Stock)
}

func TestRepository_Find(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	for i, sku := range []string{"RICE-1", "RICE-2", "OIL-1"} {
		name := "Rice"
		if sku == "OIL-1" {
			name = "Oil"
		}
		item := newItem(t, name, sku, i)
		_, err := repo.Save(ctx, item)
		require.NoError(t, err)
	}

	items, err := repo.Find(ctx, ports.ItemFilter{Search: "ric", InStock: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "RICE-2", items[0].SKU)
}

func TestRepository_Delete(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	item := newItem(t, "Olive oil", "OIL-1", 12)
	_, err := repo.Save(ctx, item)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, item.ID))
	_, err = repo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), ports.ErrNotFound)
}
