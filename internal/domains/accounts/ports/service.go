package ports

import (
	"context"

	accounttypes "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

// Service exposes account and session use cases to adapters.
type Service interface {
	Register(ctx context.Context, input accounttypes.RegisterInput) (*accounttypes.AuthResult, error)
	Login(ctx context.Context, email, password string) (*accounttypes.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, input accounttypes.UpdateProfileInput) (*domain.Account, error)
	Verify(ctx context.Context, accountID string, status domain.VerificationStatus) (*domain.Account, error)
	Authenticate(ctx context.Context, token string) (identity.Identity, error)
}
