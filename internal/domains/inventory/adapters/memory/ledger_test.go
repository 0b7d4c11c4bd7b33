package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
)

func seedItem(t *testing.T, repo *catalogmemory.Repository, id string, available int) {
	t.Helper()
	item, err := catalogdomain.NewItem(id, "Item "+id, "SKU-"+id, catalogdomain.Price{Base: decimal.NewFromInt(10)},
		catalogdomain.Stock{Available: available, Minimum: 2})
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), item)
	require.NoError(t, err)
}

func TestLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	repo := catalogmemory.NewRepository()
	seedItem(t, repo, "item-1", 10)
	ledger := NewLedger(repo)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Reserve(context.Background(), "item-1", 6)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, rejected)
	stock, err := ledger.Levels(context.Background(), "item-1")
	require.NoError(t, err)
	require.Equal(t, 4, stock.Available)
	require.Equal(t, 6, stock.Reserved)
}

func TestLedger_ManyConcurrentUnitReservations(t *testing.T) {
	repo := catalogmemory.NewRepository()
	seedItem(t, repo, "item-1", 50)
	ledger := NewLedger(repo)

	var wg sync.WaitGroup
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ledger.Reserve(context.Background(), "item-1", 1)
		}()
	}
	wg.Wait()

	stock, err := ledger.Levels(context.Background(), "item-1")
	require.NoError(t, err)
	require.Equal(t, 0, stock.Available)
	require.Equal(t, 50, stock.Reserved)
}

func TestLedger_ReleaseAfterReserve(t *testing.T) {
	repo := catalogmemory.NewRepository()
	seedItem(t, repo, "item-1", 10)
	ledger := NewLedger(repo)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, "item-1", 3))
	require.NoError(t, ledger.Release(ctx, "item-1", 3))
	require.ErrorIs(t, ledger.Release(ctx, "item-1", 1), domain.ErrInvariantViolation)

	stock, err := ledger.Levels(ctx, "item-1")
	require.NoError(t, err)
	require.Equal(t, catalogdomain.Stock{Available: 10, Reserved: 0, Minimum: 2}, stock)
}

func TestLedger_UnknownItem(t *testing.T) {
	ledger := NewLedger(catalogmemory.NewRepository())
	require.ErrorIs(t, ledger.Reserve(context.Background(), "missing", 1), catalogports.ErrNotFound)
}
