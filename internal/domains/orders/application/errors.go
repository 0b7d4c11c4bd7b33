package application

import (
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	inventorydomain "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated an order invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrUnauthorized is returned when the caller does not own the order.
	ErrUnauthorized = errors.New("order belongs to another account")
	// ErrItemNotFound matches any *ItemNotFoundError.
	ErrItemNotFound = errors.New("catalog item not found")
)

// ItemNotFoundError names the requested item that does not exist.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("catalog item not found: %s", e.ItemID)
}

func (e *ItemNotFoundError) Is(target error) bool { return target == ErrItemNotFound }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrEmptyLines) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrMissingItem) ||
		errors.Is(err, domain.ErrMissingAccount) ||
		errors.Is(err, domain.ErrMissingPaymentMethod) ||
		errors.Is(err, domain.ErrIncompleteAddress) ||
		errors.Is(err, catalogdomain.ErrInvalidQuantity) ||
		errors.Is(err, inventorydomain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
