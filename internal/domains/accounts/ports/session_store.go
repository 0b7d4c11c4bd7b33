package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session/token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes sessions that expired before now and reports how many.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
