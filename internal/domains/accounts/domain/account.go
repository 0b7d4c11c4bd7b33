package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail              = errors.New("email must contain '@'")
	ErrEmptyPassword             = errors.New("password is required")
	ErrWeakPassword              = errors.New("password must be at least 8 characters")
	ErrEmptyCompany              = errors.New("company name is required")
	ErrEmptyName                 = errors.New("first and last name are required")
	ErrEmptyPhone                = errors.New("phone is required")
	ErrInvalidBusinessType       = errors.New("business type must be retailer, wholesaler or distributor")
	ErrInvalidVerificationStatus = errors.New("verification status must be pending, verified or rejected")
	ErrIncompleteAddress         = errors.New("address is incomplete")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// BusinessType classifies the buying organisation.
type BusinessType string

const (
	BusinessRetailer    BusinessType = "retailer"
	BusinessWholesaler  BusinessType = "wholesaler"
	BusinessDistributor BusinessType = "distributor"
)

// ParseBusinessType accepts any letter case.
func ParseBusinessType(raw string) (BusinessType, error) {
	switch t := BusinessType(strings.ToLower(strings.TrimSpace(raw))); t {
	case BusinessRetailer, BusinessWholesaler, BusinessDistributor:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBusinessType, raw)
}

// VerificationStatus tracks the back-office review of an account.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus accepts any letter case.
func ParseVerificationStatus(raw string) (VerificationStatus, error) {
	switch s := VerificationStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVerificationStatus, raw)
}

// Address is the account's registered business address.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a Address) Validate() error {
	fields := []struct{ name, value string }{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrIncompleteAddress, strings.Join(missing, ", "))
}

// Account is a buying organisation's login and profile.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CompanyName  string
	BusinessType BusinessType
	FirstName    string
	LastName     string
	Phone        string
	Address      Address
	TaxID        string
	Verification VerificationStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the self-service fields of an account.
type Profile struct {
	CompanyName  string
	BusinessType BusinessType
	FirstName    string
	LastName     string
	Phone        string
	Address      Address
	TaxID        string
}

// NewAccount builds a pending account with a hashed password.
func NewAccount(id, email, password string, profile Profile, cost int) (*Account, error) {
	account := &Account{ID: id, Verification: VerificationPending}
	if err := account.SetEmail(email); err != nil {
		return nil, err
	}
	if err := account.SetPassword(password, cost); err != nil {
		return nil, err
	}
	if err := account.UpdateProfile(profile); err != nil {
		return nil, err
	}
	return account, nil
}

// NormalizeEmail is the canonical form used for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetEmail normalises and validates the login email.
func (a *Account) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" || strings.ContainsAny(email, " \t") {
		return ErrInvalidEmail
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	a.Email = email
	return nil
}

// SetPassword replaces the credential with a bcrypt hash of password.
func (a *Account) SetPassword(password string, cost int) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password against the stored hash.
func (a *Account) CheckPassword(password string) bool {
	if a.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// UpdateProfile replaces the profile after validating it.
func (a *Account) UpdateProfile(p Profile) error {
	p = trimProfile(p)
	if p.CompanyName == "" {
		return ErrEmptyCompany
	}
	if p.FirstName == "" || p.LastName == "" {
		return ErrEmptyName
	}
	if p.Phone == "" {
		return ErrEmptyPhone
	}
	bt, err := ParseBusinessType(string(p.BusinessType))
	if err != nil {
		return err
	}
	if err := p.Address.Validate(); err != nil {
		return err
	}
	a.CompanyName = p.CompanyName
	a.BusinessType = bt
	a.FirstName = p.FirstName
	a.LastName = p.LastName
	a.Phone = p.Phone
	a.Address = p.Address
	a.TaxID = p.TaxID
	return nil
}

// Profile returns the self-service fields.
func (a *Account) Profile() Profile {
	return Profile{
		CompanyName:  a.CompanyName,
		BusinessType: a.BusinessType,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Phone:        a.Phone,
		Address:      a.Address,
		TaxID:        a.TaxID,
	}
}

// SetVerification records the outcome of a back-office review.
func (a *Account) SetVerification(status VerificationStatus) error {
	parsed, err := ParseVerificationStatus(string(status))
	if err != nil {
		return err
	}
	a.Verification = parsed
	return nil
}

func trimProfile(p Profile) Profile {
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.TaxID = strings.TrimSpace(p.TaxID)
	p.Address = Address{
		Street:     strings.TrimSpace(p.Address.Street),
		City:       strings.TrimSpace(p.Address.City),
		State:      strings.TrimSpace(p.Address.State),
		PostalCode: strings.TrimSpace(p.Address.PostalCode),
		Country:    strings.TrimSpace(p.Address.Country),
	}
	return p
}
