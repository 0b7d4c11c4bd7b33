package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Pool sizes the database/sql pool behind GORM. Zero fields keep the
// database/sql defaults.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type options struct {
	pool     Pool
	logLevel gormlogger.LogLevel
}

// Option tunes Connect.
type Option func(*options)

// WithPool applies pool limits.
func WithPool(p Pool) Option {
	return func(o *options) { o.pool = p }
}

// WithQueryLogging makes GORM log every statement. Reservations run inside
// row locks, so leave this off outside local development.
func WithQueryLogging() Option {
	return func(o *options) { o.logLevel = gormlogger.Info }
}

// Connect opens PostgreSQL through GORM, with driver errors translated to
// gorm.ErrDuplicatedKey and friends, and pings it before returning.
func Connect(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	cfg := options{logLevel: gormlogger.Warn}
	for _, opt := range opts {
		opt(&cfg)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(cfg.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.pool.MaxOpenConns)
	}
	if cfg.pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.pool.MaxIdleConns)
	}
	if cfg.pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.pool.ConnMaxLifetime)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
