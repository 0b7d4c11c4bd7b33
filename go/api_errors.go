package orderingserver

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	accountsapp "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/application"
	accountports "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
	catalogapp "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	inventorydomain "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	ordersapp "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/b2b-ordering-api/internal/shared/errors"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

var responder = apierrors.NewResponder(nil,
	mapAuthError,
	mapStockError,
	mapConflictError,
	mapNotFoundError,
	mapValidationError,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError translates an application error into an RFC 7807 response.
// Ledger invariant breaches are logged for alerting before answering 500.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var violation *inventorydomain.InvariantViolationError
	if errors.As(err, &violation) {
		slog.Default().LogAttrs(c.Request.Context(), slog.LevelError, "inventory invariant violated",
			slog.Bool("alert", true),
			slog.String("item.id", violation.ItemID),
			slog.Int("released", violation.Released),
			slog.Int("reserved", violation.Reserved),
			slog.String("path", c.FullPath()))
		respondProblem(c, apierrors.ErrInternal.WithDetail("inventory invariant violated"))
		return
	}
	responder.RespondError(c, err)
}

func mapAuthError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated), errors.Is(err, accountsapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrUnauthorized):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapStockError(err error) (apierrors.ProblemDetail, bool) {
	var insufficient *inventorydomain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewInsufficientStockProblem(insufficient.ItemID, insufficient.Requested, insufficient.Available), true
}

func mapConflictError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, orderdomain.ErrInvalidStateForCancellation):
		return apierrors.ErrInvalidTransition.WithDetail(err.Error()), true
	case errors.Is(err, orderports.ErrIdempotencyConflict):
		return apierrors.ErrIdempotencyConflict.WithDetail(err.Error()), true
	case errors.Is(err, orderports.ErrConcurrentModification),
		errors.Is(err, orderports.ErrDuplicateOrderNumber),
		errors.Is(err, accountports.ErrDuplicateEmail),
		errors.Is(err, catalogports.ErrDuplicateSKU):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapNotFoundError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderports.ErrNotFound),
		errors.Is(err, ordersapp.ErrItemNotFound),
		errors.Is(err, catalogports.ErrNotFound),
		errors.Is(err, accountports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapValidationError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersapp.ErrInvalidInput),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, accountsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
