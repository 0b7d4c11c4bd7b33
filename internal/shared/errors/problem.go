// Package errors renders application failures as RFC 7807 problem documents.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is the body of every non-2xx response.
// See https://www.rfc-editor.org/rfc/rfc7807.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with key set in Extensions. The receiver's
// map is never mutated, so the package-level templates stay pristine.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

const (
	TypeValidation          = "/problems/validation-error"
	TypeBadRequest          = "/problems/bad-request"
	TypeUnauthorized        = "/problems/unauthorized"
	TypeForbidden           = "/problems/forbidden"
	TypeNotFound            = "/problems/not-found"
	TypeConflict            = "/problems/conflict"
	TypeInsufficientStock   = "/problems/insufficient-stock"
	TypeInvalidTransition   = "/problems/invalid-transition"
	TypeIdempotencyConflict = "/problems/idempotency-conflict"
	TypeInternal            = "/problems/internal-error"
)

func problem(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

var (
	ErrValidation   = problem(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest   = problem(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrUnauthorized = problem(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrForbidden    = problem(TypeForbidden, "Forbidden", http.StatusForbidden)
	ErrNotFound     = problem(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrConflict     = problem(TypeConflict, "Conflict", http.StatusConflict)
	ErrInternal     = problem(TypeInternal, "Internal Server Error", http.StatusInternalServerError)

	// ErrInsufficientStock rejects a reservation the ledger cannot cover.
	ErrInsufficientStock = problem(TypeInsufficientStock, "Insufficient Stock", http.StatusConflict)
	// ErrInvalidTransition rejects a lifecycle move the order status forbids.
	ErrInvalidTransition = problem(TypeInvalidTransition, "Invalid Status Transition", http.StatusConflict)
	// ErrIdempotencyConflict rejects a reused key with a different payload.
	ErrIdempotencyConflict = problem(TypeIdempotencyConflict, "Idempotency Key Reused", http.StatusConflict)
)

// NewInsufficientStockProblem names the first line the ledger rejected.
func NewInsufficientStockProblem(itemID string, requested, available int) ProblemDetail {
	return ErrInsufficientStock.
		WithDetail(fmt.Sprintf("item %s: requested %d, available %d", itemID, requested, available)).
		WithExtension("itemId", itemID).
		WithExtension("requested", requested).
		WithExtension("available", available)
}
