// Package redis keeps order idempotency keys in Redis with a bounded lifetime.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

const (
	// KeyIdemOrderCreate namespaces placement idempotency keys.
	KeyIdemOrderCreate = "idem:order:create:%s"
	// TTLIdempotency bounds how long a key replays its order.
	TTLIdempotency = ports.DefaultIdempotencyRetention
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore records keys with SET NX so concurrent writers across
// processes agree on a single winner.
type IdempotencyStore struct {
	client goredis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

// NewIdempotencyStore wires a Redis-backed store. A non-positive ttl uses TTLIdempotency.
func NewIdempotencyStore(client goredis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = TTLIdempotency
	}
	return &IdempotencyStore{client: client, ttl: ttl, now: time.Now}
}

type storedRecord struct {
	Key         string    `json:"key"`
	AccountID   string    `json:"accountId"`
	RequestHash string    `json:"requestHash"`
	OrderID     string    `json:"orderId"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("redis idempotency store not configured")
	}
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}
	return stored.toPort(), nil
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("redis idempotency store not configured")
	}
	now := s.now().UTC()
	stored := storedRecord{
		Key:         record.Key,
		AccountID:   record.AccountID,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	won, err := s.client.SetNX(ctx, redisKey(record.Key), payload, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if won {
		return stored.toPort(), nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Expired between SETNX and GET; the caller may retry.
		return nil, fmt.Errorf("idempotency key %q vanished during save", record.Key)
	}
	if !existing.Matches(record) {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func redisKey(key string) string {
	return fmt.Sprintf(KeyIdemOrderCreate, key)
}

func (r storedRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		AccountID:   r.AccountID,
		RequestHash: r.RequestHash,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}
