package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps placement keys in process memory.
type IdempotencyStore struct {
	mu        sync.Mutex
	records   map[string]ports.IdempotencyRecord
	retention time.Duration
	now       func() time.Time
}

// IdempotencyOption configures the memory store.
type IdempotencyOption func(*IdempotencyStore)

// WithRetention overrides ports.DefaultIdempotencyRetention.
func WithRetention(d time.Duration) IdempotencyOption {
	return func(s *IdempotencyStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithIdempotencyClock replaces time.Now.
func WithIdempotencyClock(now func() time.Time) IdempotencyOption {
	return func(s *IdempotencyStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewIdempotencyStore(opts ...IdempotencyOption) *IdempotencyStore {
	s := &IdempotencyStore{
		records:   map[string]ports.IdempotencyRecord{},
		retention: ports.DefaultIdempotencyRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.live(key)
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.live(record.Key); ok {
		if !existing.Matches(record) {
			return &existing, ports.ErrIdempotencyConflict
		}
		return &existing, nil
	}
	now := s.now().UTC()
	record.CreatedAt = now
	record.ExpiresAt = now.Add(s.retention)
	s.records[record.Key] = record
	return &record, nil
}

// live drops key when it has expired. Callers hold mu.
func (s *IdempotencyStore) live(key string) (ports.IdempotencyRecord, bool) {
	record, ok := s.records[key]
	if !ok {
		return ports.IdempotencyRecord{}, false
	}
	if record.Expired(s.now()) {
		delete(s.records, key)
		return ports.IdempotencyRecord{}, false
	}
	return record, true
}
