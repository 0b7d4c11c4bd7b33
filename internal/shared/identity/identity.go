// Package identity carries the authenticated caller through request contexts.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthenticated is returned by operations that require a caller identity.
var ErrUnauthenticated = errors.New("not authenticated")

// Identity is the authenticated caller as resolved by the accounts context.
type Identity struct {
	AccountID string
	Email     string
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// WithAccount is shorthand for WithIdentity when only the account is known.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return WithIdentity(ctx, Identity{AccountID: accountID})
}

// FromContext returns the caller identity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || strings.TrimSpace(id.AccountID) == "" {
		return Identity{}, false
	}
	return id, true
}

// Require returns the caller identity or ErrUnauthenticated.
func Require(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}
