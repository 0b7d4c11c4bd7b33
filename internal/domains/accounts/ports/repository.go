package ports

import (
	"context"
	"errors"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository persists accounts. Emails are unique after normalisation.
type Repository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}
