package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict reports a key reused with a different payload or order.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// DefaultIdempotencyRetention is how long a placement key replays its order.
const DefaultIdempotencyRetention = 24 * time.Hour

// IdempotencyRecord ties a scoped placement key to the order it produced.
type IdempotencyRecord struct {
	Key         string
	AccountID   string
	RequestHash string
	OrderID     string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the key may be reused at now. A zero ExpiresAt
// never expires.
func (r IdempotencyRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Matches reports whether other replays the same request and order.
func (r IdempotencyRecord) Matches(other IdempotencyRecord) bool {
	return r.RequestHash == other.RequestHash && r.OrderID == other.OrderID
}

// IdempotencyStore keeps placement keys for their retention window.
// Expired keys behave as absent.
type IdempotencyStore interface {
	// Get returns the live record for key, or nil.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save claims the key. A live key that Matches returns the stored record;
	// any other live key returns the stored record with ErrIdempotencyConflict.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
