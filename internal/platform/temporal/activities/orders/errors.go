package orders

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	inventorydomain "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	orderapp "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeInsufficientStock    = "InsufficientStock"
	ErrTypeItemNotFound         = "ItemNotFound"
	ErrTypeInvalidInput         = "InvalidInput"
	ErrTypeUnauthenticated      = "Unauthenticated"
	ErrTypeIdempotencyConflict  = "IdempotencyConflict"
	ErrTypeInvariantViolation   = "InvariantViolation"
	ErrTypeDuplicateOrderNumber = "DuplicateOrderNumber"
)

// NonRetryableErrorTypes lists the business failures a retry cannot fix.
var NonRetryableErrorTypes = []string{
	ErrTypeInsufficientStock,
	ErrTypeItemNotFound,
	ErrTypeInvalidInput,
	ErrTypeUnauthenticated,
	ErrTypeIdempotencyConflict,
	ErrTypeInvariantViolation,
	ErrTypeDuplicateOrderNumber,
}

type errorDetail struct {
	ItemID    string `json:"itemId,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

// EncodeError turns business errors into non-retryable application errors.
// Anything else is returned unchanged and retried by Temporal.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var insufficient *inventorydomain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, err, errorDetail{
			ItemID:    insufficient.ItemID,
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		})
	}
	var notFound *orderapp.ItemNotFoundError
	if errors.As(err, &notFound) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeItemNotFound, err, errorDetail{ItemID: notFound.ItemID})
	}
	switch {
	case errors.Is(err, orderapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, identity.ErrUnauthenticated):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeUnauthenticated, err)
	case errors.Is(err, orderports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	case errors.Is(err, inventorydomain.ErrInvariantViolation):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvariantViolation, err)
	case errors.Is(err, orderports.ErrDuplicateOrderNumber):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeDuplicateOrderNumber, err)
	}
	return err
}

// DecodeError restores the typed error behind a workflow failure so callers
// can keep matching with errors.Is and errors.As. Failures whose details do
// not decode are returned unchanged.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	var detail errorDetail
	if appErr.HasDetails() {
		if derr := appErr.Details(&detail); derr != nil {
			return err
		}
	}
	switch appErr.Type() {
	case ErrTypeInsufficientStock:
		return &inventorydomain.InsufficientStockError{ItemID: detail.ItemID, Requested: detail.Requested, Available: detail.Available}
	case ErrTypeItemNotFound:
		return &orderapp.ItemNotFoundError{ItemID: detail.ItemID}
	case ErrTypeInvalidInput:
		return fmt.Errorf("%w: %s", orderapp.ErrInvalidInput, appErr.Message())
	case ErrTypeUnauthenticated:
		return identity.ErrUnauthenticated
	case ErrTypeIdempotencyConflict:
		return orderports.ErrIdempotencyConflict
	case ErrTypeInvariantViolation:
		return fmt.Errorf("%w: %s", inventorydomain.ErrInvariantViolation, appErr.Message())
	case ErrTypeDuplicateOrderNumber:
		return orderports.ErrDuplicateOrderNumber
	}
	return err
}
