package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidSession = errors.New("session requires a token, an account and an expiry")

// Session binds an opaque bearer token to an account until ExpiresAt.
type Session struct {
	Token     string
	AccountID string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession issues a session valid for ttl from now.
func NewSession(token, accountID, email string, now time.Time, ttl time.Duration) (Session, error) {
	s := Session{
		Token:     strings.TrimSpace(token),
		AccountID: accountID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if s.Token == "" || s.AccountID == "" || ttl <= 0 {
		return Session{}, ErrInvalidSession
	}
	return s, nil
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
