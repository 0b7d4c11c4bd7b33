// Package redis keeps account sessions in Redis, letting key expiry enforce the TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
)

// KeySession namespaces session tokens.
const KeySession = "session:%s"

var _ ports.SessionStore = (*SessionStore)(nil)

type SessionStore struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewSessionStore(client goredis.Cmdable) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

type storedSession struct {
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if session.Token == "" || ttl <= 0 {
		return domain.ErrInvalidSession
	}
	payload, err := json.Marshal(storedSession{
		AccountID: session.AccountID,
		Email:     session.Email,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), payload, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (domain.Session, error) {
	if err := s.ensureClient(); err != nil {
		return domain.Session{}, err
	}
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Session{}, ports.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return domain.Session{
		Token:     token,
		AccountID: stored.AccountID,
		Email:     stored.Email,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// PurgeExpired is a no-op: Redis evicts expired sessions itself.
func (s *SessionStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *SessionStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis session store not configured")
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf(KeySession, token)
}
