package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory account adapter.
type Repository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Account
	byEmail map[string]string
}

func NewRepository() *Repository {
	return &Repository{byID: map[string]*domain.Account{}, byEmail: map[string]string{}}
}

func (r *Repository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil || account.ID == "" {
		return nil, errors.New("account id is required")
	}
	clone := *account
	clone.Email = domain.NormalizeEmail(clone.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[clone.Email]; taken {
		return nil, ports.ErrDuplicateEmail
	}
	if _, exists := r.byID[clone.ID]; exists {
		return nil, errors.New("account id already exists")
	}
	r.byID[clone.ID] = &clone
	r.byEmail[clone.Email] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) Update(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil {
		return nil, errors.New("account is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[account.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *account
	clone.Email = existing.Email
	clone.CreatedAt = existing.CreatedAt
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
