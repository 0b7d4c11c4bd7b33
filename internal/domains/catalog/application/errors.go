package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
)

// ErrInvalidInput signals the request violated a catalog invariant.
var ErrInvalidInput = errors.New("invalid catalog input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptySKU) ||
		errors.Is(err, domain.ErrInvalidBasePrice) ||
		errors.Is(err, domain.ErrInvalidBreakpoint) ||
		errors.Is(err, domain.ErrDuplicateBreakpoint) ||
		errors.Is(err, domain.ErrInvalidCurrency) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
