package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
)

var (
	// ErrInvalidInput signals the request violated an account invariant.
	ErrInvalidInput = errors.New("invalid account input")
	// ErrAuthentication covers bad credentials and unknown or expired tokens.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidCredentials never says which half of the pair was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrEmptyPassword) ||
		errors.Is(err, domain.ErrWeakPassword) ||
		errors.Is(err, domain.ErrEmptyCompany) ||
		errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyPhone) ||
		errors.Is(err, domain.ErrInvalidBusinessType) ||
		errors.Is(err, domain.ErrInvalidVerificationStatus) ||
		errors.Is(err, domain.ErrIncompleteAddress) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return err
}
