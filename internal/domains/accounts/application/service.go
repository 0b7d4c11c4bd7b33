package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	accounttypes "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes account bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	hashCost   int
	now        func() time.Time
	newID      func() string
	newToken   func() string
}

// Option customises optional collaborators of the service.
type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithHashCost sets the bcrypt cost for new credentials.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
		newID:      uuid.NewString,
		newToken:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a pending account and signs it in.
func (s *Service) Register(ctx context.Context, input accounttypes.RegisterInput) (*accounttypes.AuthResult, error) {
	account, err := domain.NewAccount(s.newID(), input.Email, input.Password, domain.Profile{
		CompanyName:  input.CompanyName,
		BusinessType: domain.BusinessType(input.BusinessType),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Address:      domain.Address(input.Address),
		TaxID:        input.TaxID,
	}, s.hashCost)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now().UTC()
	account.CreatedAt, account.UpdatedAt = now, now
	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, mapError(err)
	}
	return s.openSession(ctx, created)
}

// Login exchanges credentials for a new session token.
func (s *Service) Login(ctx context.Context, email, password string) (*accounttypes.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, mapError(ErrInvalidCredentials)
	}
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ErrInvalidCredentials)
		}
		return nil, err
	}
	if !account.CheckPassword(password) {
		return nil, mapError(ErrInvalidCredentials)
	}
	return s.openSession(ctx, account)
}

// Logout revokes token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context) (*domain.Account, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caller.AccountID)
}

// GetAccount loads any account for an authenticated caller.
func (s *Service) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes the caller's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, input accounttypes.UpdateProfileInput) (*domain.Account, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.UpdateProfile(applyProfile(account.Profile(), input)); err != nil {
		return nil, mapError(err)
	}
	account.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, account)
}

// Verify records the review outcome for accountID.
func (s *Service) Verify(ctx context.Context, accountID string, status domain.VerificationStatus) (*domain.Account, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.SetVerification(status); err != nil {
		return nil, mapError(err)
	}
	account.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, account)
}

// Authenticate resolves a bearer token into the caller identity.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Identity{}, ErrAuthentication
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return identity.Identity{}, ErrAuthentication
		}
		return identity.Identity{}, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return identity.Identity{}, fmt.Errorf("%w: session expired", ErrAuthentication)
	}
	return identity.Identity{AccountID: session.AccountID, Email: session.Email}, nil
}

func (s *Service) openSession(ctx context.Context, account *domain.Account) (*accounttypes.AuthResult, error) {
	session, err := domain.NewSession(s.newToken(), account.ID, account.Email, s.now().UTC(), s.sessionTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &accounttypes.AuthResult{Token: session.Token, ExpiresAt: session.ExpiresAt, Account: account}, nil
}

func applyProfile(p domain.Profile, input accounttypes.UpdateProfileInput) domain.Profile {
	if input.CompanyName != nil {
		p.CompanyName = *input.CompanyName
	}
	if input.FirstName != nil {
		p.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		p.LastName = *input.LastName
	}
	if input.Phone != nil {
		p.Phone = *input.Phone
	}
	if input.Address != nil {
		p.Address = domain.Address(*input.Address)
	}
	if input.TaxID != nil {
		p.TaxID = *input.TaxID
	}
	return p
}

var _ ports.Service = (*Service)(nil)
