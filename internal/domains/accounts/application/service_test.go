package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/memory"
	accounttypes "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newService(t *testing.T) (*Service, *memory.SessionStore, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2024, 7, 9, 10, 0, 0, 0, time.UTC)}
	sessions := memory.NewSessionStore()
	svc := NewService(memory.NewRepository(), sessions,
		WithHashCost(bcrypt.MinCost),
		WithSessionTTL(2*time.Hour),
		WithClock(c.Now),
	)
	return svc, sessions, c
}

func registration(email string) accounttypes.RegisterInput {
	return accounttypes.RegisterInput{
		Email:        email,
		Password:     "correct horse",
		CompanyName:  "Harbour Foods",
		BusinessType: "distributor",
		FirstName:    "Ana",
		LastName:     "Silva",
		Phone:        "+31 10 555 0101",
		Address:      accounttypes.AddressInput{Street: "1 Dock Rd", City: "Rotterdam", State: "ZH", PostalCode: "3011", Country: "NL"},
	}
}

func TestRegister_SignsInPendingAccount(t *testing.T) {
	svc, _, c := newService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, registration("Buyer@Harbour.example"))
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, c.now.Add(2*time.Hour), result.ExpiresAt)
	assert.Equal(t, "buyer@harbour.example", result.Account.Email)
	assert.Equal(t, domain.VerificationPending, result.Account.Verification)

	caller, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Account.ID, caller.AccountID)
	assert.Equal(t, "buyer@harbour.example", caller.Email)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registration("buyer@harbour.example"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registration("BUYER@harbour.example"))
	require.ErrorIs(t, err, ports.ErrDuplicateEmail)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc, _, _ := newService(t)
	input := registration("buyer@harbour.example")
	input.BusinessType = "consumer"

	_, err := svc.Register(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidBusinessType)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, registration("buyer@harbour.example"))
	require.NoError(t, err)

	result, err := svc.Login(ctx, " buyer@HARBOUR.example", "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, registered.Token, result.Token)
	assert.Equal(t, registered.Account.ID, result.Account.ID)

	for _, tc := range []struct{ email, password string }{
		{"buyer@harbour.example", "wrong horse"},
		{"nobody@harbour.example", "correct horse"},
		{"", ""},
	} {
		_, err := svc.Login(ctx, tc.email, tc.password)
		require.ErrorIs(t, err, ErrAuthentication)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestAuthenticate_ExpiredAndRevokedTokens(t *testing.T) {
	svc, sessions, c := newService(t)
	ctx := context.Background()
	result, err := svc.Register(ctx, registration("buyer@harbour.example"))
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "unknown")
	require.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, ErrAuthentication)

	c.now = c.now.Add(2 * time.Hour)
	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, ErrAuthentication)
	_, err = sessions.Get(ctx, result.Token)
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	again, err := svc.Login(ctx, "buyer@harbour.example", "correct horse")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, again.Token))
	require.NoError(t, svc.Logout(ctx, again.Token))
	_, err = svc.Authenticate(ctx, again.Token)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestMeAndUpdateProfile(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Me(ctx)
	require.ErrorIs(t, err, identity.ErrUnauthenticated)

	result, err := svc.Register(ctx, registration("buyer@harbour.example"))
	require.NoError(t, err)
	ctx = identity.WithAccount(ctx, result.Account.ID)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Harbour Foods", me.CompanyName)

	company := "Harbour Foods B.V."
	updated, err := svc.UpdateProfile(ctx, accounttypes.UpdateProfileInput{CompanyName: &company})
	require.NoError(t, err)
	assert.Equal(t, company, updated.CompanyName)
	assert.Equal(t, "Ana", updated.FirstName)
	assert.True(t, updated.CheckPassword("correct horse"))

	empty := ""
	_, err = svc.UpdateProfile(ctx, accounttypes.UpdateProfileInput{Phone: &empty})
	require.ErrorIs(t, err, ErrInvalidInput)
	me, err = svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "+31 10 555 0101", me.Phone)
}

func TestVerify(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	result, err := svc.Register(ctx, registration("buyer@harbour.example"))
	require.NoError(t, err)

	_, err = svc.Verify(ctx, result.Account.ID, domain.VerificationVerified)
	require.ErrorIs(t, err, identity.ErrUnauthenticated)

	reviewer := identity.WithAccount(ctx, "back-office")
	verified, err := svc.Verify(reviewer, result.Account.ID, domain.VerificationVerified)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, verified.Verification)

	_, err = svc.Verify(reviewer, result.Account.ID, "approved")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Verify(reviewer, "missing", domain.VerificationRejected)
	require.ErrorIs(t, err, ports.ErrNotFound)

	fetched, err := svc.GetAccount(reviewer, result.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, fetched.Verification)
}

type failingSessions struct {
	*memory.SessionStore
}

func (failingSessions) Save(context.Context, domain.Session) error {
	return errors.New("session backend down")
}

func TestLogin_SessionFailureIsReported(t *testing.T) {
	c := &clock{now: time.Now()}
	repo := memory.NewRepository()
	seed := NewService(repo, memory.NewSessionStore(), WithHashCost(bcrypt.MinCost), WithClock(c.Now))
	_, err := seed.Register(context.Background(), registration("buyer@harbour.example"))
	require.NoError(t, err)

	svc := NewService(repo, failingSessions{memory.NewSessionStore()}, WithHashCost(bcrypt.MinCost), WithClock(c.Now))
	_, err = svc.Login(context.Background(), "buyer@harbour.example", "correct horse")
	require.EqualError(t, err, "session backend down")
}
