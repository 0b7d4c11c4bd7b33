package types

import (
	"time"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
)

// AddressInput is a postal address as supplied by a client.
type AddressInput struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// RegisterInput carries the self-registration form.
type RegisterInput struct {
	Email        string
	Password     string
	CompanyName  string
	BusinessType string
	FirstName    string
	LastName     string
	Phone        string
	Address      AddressInput
	TaxID        string
}

// UpdateProfileInput changes only the non-nil fields.
type UpdateProfileInput struct {
	CompanyName *string
	FirstName   *string
	LastName    *string
	Phone       *string
	Address     *AddressInput
	TaxID       *string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}
