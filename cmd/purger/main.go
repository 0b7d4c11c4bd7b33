package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/b2b-ordering-api/internal/app"
	accountspostgres "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/persistence/postgres"
	orderspostgres "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/persistence/postgres"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/b2b-ordering-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/b2b-ordering-api/internal/platform/postgres"
)

// purger deletes expired sessions and idempotency keys from PostgreSQL.
// Redis-backed deployments expire both through key TTLs instead.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(platformobservability.NewContextHandler(handler)).With(slog.String("service", "purger"))
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; nothing to purge")
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresOptions()...)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	now := time.Now().UTC()
	failed := false
	sessions, err := accountspostgres.NewSessionStore(db).PurgeExpired(ctx, now)
	if err != nil {
		logger.Error("failed to purge sessions", slog.String("error", err.Error()))
		failed = true
	}
	keys, err := orderspostgres.NewIdempotencyStore(db, orderports.DefaultIdempotencyRetention).PurgeExpired(ctx, now)
	if err != nil {
		logger.Error("failed to purge idempotency keys", slog.String("error", err.Error()))
		failed = true
	}
	logger.Info("purge completed",
		slog.Int64("sessions.purged", sessions),
		slog.Int64("idempotency_keys.purged", keys))
	if failed {
		os.Exit(1)
	}
}
