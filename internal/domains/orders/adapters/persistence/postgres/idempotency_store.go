package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps placement keys in order_idempotency_keys. The
// primary key serialises concurrent claims across API instances.
type IdempotencyStore struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

// NewIdempotencyStore uses ports.DefaultIdempotencyRetention when retention
// is not positive.
func NewIdempotencyStore(db *gorm.DB, retention time.Duration) *IdempotencyStore {
	if retention <= 0 {
		retention = ports.DefaultIdempotencyRetention
	}
	return &IdempotencyStore{db: db, retention: retention, now: time.Now}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var row idempotencyRow
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now().UTC()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toPort(), nil
}

// Save inserts the key, taking over a row whose retention has lapsed.
// A live row decides between replay and ErrIdempotencyConflict.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	row := idempotencyRow{
		Key:         record.Key,
		AccountID:   record.AccountID,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.retention),
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "request_hash", "order_id", "created_at", "expires_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lte{Column: clause.Column{Table: "order_idempotency_keys", Name: "expires_at"}, Value: now},
		}},
	}).Create(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return row.toPort(), nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key expired during save")
	}
	if !existing.Matches(record) {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

// PurgeExpired deletes keys whose retention ended before now.
func (s *IdempotencyStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&idempotencyRow{})
	return res.RowsAffected, res.Error
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

type idempotencyRow struct {
	Key         string    `gorm:"primaryKey;column:key"`
	AccountID   string    `gorm:"column:account_id"`
	RequestHash string    `gorm:"column:request_hash"`
	OrderID     string    `gorm:"column:order_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyRow) TableName() string { return "order_idempotency_keys" }

func (r idempotencyRow) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		AccountID:   r.AccountID,
		RequestHash: r.RequestHash,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}
