package mapper

import (
	"time"

	accounttypes "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
)

// Address is a postal address on the wire.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Register is the self-registration payload.
type Register struct {
	Email        string  `json:"email" binding:"required"`
	Password     string  `json:"password" binding:"required"`
	CompanyName  string  `json:"companyName"`
	BusinessType string  `json:"businessType"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Phone        string  `json:"phone"`
	Address      Address `json:"address"`
	TaxID        string  `json:"taxId,omitempty"`
}

// Login carries credentials.
type Login struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfile changes only the fields present in the body.
type UpdateProfile struct {
	CompanyName *string  `json:"companyName,omitempty"`
	FirstName   *string  `json:"firstName,omitempty"`
	LastName    *string  `json:"lastName,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Address     *Address `json:"address,omitempty"`
	TaxID       *string  `json:"taxId,omitempty"`
}

// Verification is the review outcome payload.
type Verification struct {
	Status string `json:"status" binding:"required"`
}

// Account is the public representation; the credential never leaves the service.
type Account struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	CompanyName        string    `json:"companyName"`
	BusinessType       string    `json:"businessType"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Phone              string    `json:"phone"`
	Address            Address   `json:"address"`
	TaxID              string    `json:"taxId,omitempty"`
	VerificationStatus string    `json:"verificationStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Auth is returned by register and login.
type Auth struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   Account   `json:"account"`
}

func ToRegisterInput(payload Register) accounttypes.RegisterInput {
	return accounttypes.RegisterInput{
		Email:        payload.Email,
		Password:     payload.Password,
		CompanyName:  payload.CompanyName,
		BusinessType: payload.BusinessType,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Phone:        payload.Phone,
		Address:      accounttypes.AddressInput(payload.Address),
		TaxID:        payload.TaxID,
	}
}

func ToUpdateProfileInput(payload UpdateProfile) accounttypes.UpdateProfileInput {
	input := accounttypes.UpdateProfileInput{
		CompanyName: payload.CompanyName,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Phone:       payload.Phone,
		TaxID:       payload.TaxID,
	}
	if payload.Address != nil {
		address := accounttypes.AddressInput(*payload.Address)
		input.Address = &address
	}
	return input
}

// FromDomainAccount converts a domain account into its transport representation.
func FromDomainAccount(account *domain.Account) Account {
	if account == nil {
		return Account{}
	}
	return Account{
		ID:                 account.ID,
		Email:              account.Email,
		CompanyName:        account.CompanyName,
		BusinessType:       string(account.BusinessType),
		FirstName:          account.FirstName,
		LastName:           account.LastName,
		Phone:              account.Phone,
		Address:            Address(account.Address),
		TaxID:              account.TaxID,
		VerificationStatus: string(account.Verification),
		CreatedAt:          account.CreatedAt,
		UpdatedAt:          account.UpdatedAt,
	}
}

func FromAuthResult(result *accounttypes.AuthResult) Auth {
	if result == nil {
		return Auth{}
	}
	return Auth{Token: result.Token, ExpiresAt: result.ExpiresAt, Account: FromDomainAccount(result.Account)}
}
