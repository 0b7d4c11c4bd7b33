package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation keyed by token.
type SessionStore struct {
	sessions sync.Map
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.sessions.Store(session.Token, session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (domain.Session, error) {
	value, ok := s.sessions.Load(token)
	if !ok {
		return domain.Session{}, ports.ErrSessionNotFound
	}
	return value.(domain.Session), nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		if value.(domain.Session).Expired(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}
