//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
	"github.com/Apurer/b2b-ordering-api/internal/platform/postgres/pgtest"
)

func newAccount(t *testing.T, email string) *domain.Account {
	t.Helper()
	account, err := domain.NewAccount(uuid.NewString(), email, "correct horse", domain.Profile{
		CompanyName:  "Harbour Foods",
		BusinessType: domain.BusinessRetailer,
		FirstName:    "Ana",
		LastName:     "Silva",
		Phone:        "+31 10 555 0101",
		Address:      domain.Address{Street: "1 Dock Rd", City: "Rotterdam", State: "ZH", PostalCode: "3011", Country: "NL"},
	}, bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	account.CreatedAt, account.UpdatedAt = now, now
	return account
}

func TestRepository_CreateGetAndUpdate(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	account := newAccount(t, "buyer@harbour.example")
	_, err := repo.Create(ctx, account)
	require.NoError(t, err)

	_, err = repo.Create(ctx, newAccount(t, "buyer@harbour.example"))
	require.ErrorIs(t, err, ports.ErrDuplicateEmail)

	fetched, err := repo.GetByEmail(ctx, "Buyer@Harbour.example")
	require.NoError(t, err)
	assert.Equal(t, account.ID, fetched.ID)
	assert.Equal(t, "Rotterdam", fetched.Address.City)
	assert.True(t, fetched.CheckPassword("correct horse"))

	require.NoError(t, fetched.SetVerification(domain.VerificationVerified))
	fetched.Address.City = "Delft"
	updated, err := repo.Update(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, updated.Verification)
	assert.Equal(t, "Delft", updated.Address.City)

	_, err = repo.GetByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.Update(ctx, newAccount(t, "ghost@harbour.example"))
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_SaveGetPurge(t *testing.T) {
	db := pgtest.Start(t)
	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()
	accountID := uuid.NewString()

	expired, err := domain.NewSession("expired-token", accountID, "a@b.c", now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	live, err := domain.NewSession("live-token", accountID, "a@b.c", now, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, expired))
	require.NoError(t, store.Save(ctx, live))

	got, err := store.Get(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, accountID, got.AccountID)

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	_, err = store.Get(ctx, "expired-token")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "live-token"))
	_, err = store.Get(ctx, "live-token")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}
