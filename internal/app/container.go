package app

import (
	"context"
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	accountsmemory "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/memory"
	accountsobs "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/observability"
	accountspostgres "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/persistence/postgres"
	accountsredis "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/redis"
	accountsapp "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/application"
	accountports "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
	catalogmemory "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	inventorymemory "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/adapters/memory"
	inventorykafka "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/adapters/messaging/kafka"
	inventoryobs "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/adapters/observability"
	inventorypostgres "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/adapters/persistence/postgres"
	inventoryapp "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	ordersmemory "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/memory"
	orderskafka "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/messaging/kafka"
	ordersobs "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/redis"
	ordersapp "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application"
	orderports "github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/b2b-ordering-api/internal/platform/messaging/kafka"
	"github.com/Apurer/b2b-ordering-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/b2b-ordering-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/b2b-ordering-api/internal/platform/postgres"
	platformredis "github.com/Apurer/b2b-ordering-api/internal/platform/redis"
)

// Container builds every backend and service once per process. Backends that
// are not configured or not reachable fall back to in-memory adapters.
type Container struct {
	Config Config
	Logger *slog.Logger

	DB    *gorm.DB
	Redis *goredis.Client

	CatalogRepo   catalogports.Repository
	Ledger        inventoryports.Ledger
	Replenishment inventoryports.Replenishment

	Catalog  catalogports.Service
	Orders   orderports.Service
	Accounts accountports.Service

	closers []func() error
}

// NewContainer connects the configured backends and wires the services.
func NewContainer(ctx context.Context, cfg Config, producer string, instruments *platformobservability.Instruments) (*Container, error) {
	if instruments == nil {
		return nil, errors.New("observability instruments are required")
	}
	c := &Container{Config: cfg, Logger: instruments.Logger}
	c.connectPostgres(ctx)
	c.connectRedis(ctx)

	if c.DB != nil {
		c.CatalogRepo = catalogpostgres.NewRepository(c.DB)
		c.Ledger = inventorypostgres.NewLedger(c.DB)
	} else {
		c.CatalogRepo = catalogmemory.NewRepository()
		c.Ledger = inventorymemory.NewLedger(c.CatalogRepo)
	}
	c.Ledger = inventoryobs.New(c.Ledger,
		inventoryobs.WithLogger(c.Logger),
		inventoryobs.WithTracer(instruments.Tracer("internal.inventory.ledger")),
		inventoryobs.WithMeter(instruments.Meter("internal.inventory.ledger")),
	)
	c.Replenishment = inventoryapp.NewReplenishment(c.Ledger, c.alertPublisher(producer))

	c.Catalog = catalogobs.New(
		catalogapp.NewService(c.CatalogRepo),
		catalogobs.WithLogger(c.Logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	c.Orders = ordersobs.New(
		ordersapp.NewService(c.CatalogRepo, c.Ledger, c.orderRepository(),
			ordersapp.WithIdempotencyStore(c.idempotencyStore()),
			ordersapp.WithEventPublisher(c.eventPublisher(producer)),
			ordersapp.WithLogger(c.Logger),
		),
		ordersobs.WithLogger(c.Logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	accountRepo, sessions := c.accountStores()
	c.Accounts = accountsobs.New(
		accountsapp.NewService(accountRepo, sessions, accountsapp.WithSessionTTL(cfg.SessionTTL)),
		accountsobs.WithLogger(c.Logger),
		accountsobs.WithTracer(instruments.Tracer("internal.accounts.application")),
		accountsobs.WithMeter(instruments.Meter("internal.accounts.application")),
	)
	return c, nil
}

// Close releases every backend connection in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("failed to close backend", slog.String("error", err.Error()))
		}
	}
	c.closers = nil
}

func (c *Container) connectPostgres(ctx context.Context) {
	if c.Config.PostgresDSN == "" {
		c.Logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return
	}
	db, err := platformpostgres.Connect(ctx, c.Config.PostgresDSN, c.Config.PostgresOptions()...)
	if err != nil {
		c.Logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		c.Logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return
	}
	if err := migrations.Run(db); err != nil {
		c.Logger.Warn("schema migration failed", slog.String("error", err.Error()))
	}
	c.DB = db
	c.closers = append(c.closers, sqlDB.Close)
	c.Logger.Info("repositories configured with postgres")
}

func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.RedisAddr == "" {
		return
	}
	client, err := platformredis.Connect(ctx, c.Config.RedisAddr)
	if err != nil {
		c.Logger.Warn("failed to connect to redis, sessions and idempotency keys stay local", slog.String("error", err.Error()))
		return
	}
	c.Redis = client
	c.closers = append(c.closers, client.Close)
	c.Logger.Info("redis configured", slog.String("addr", c.Config.RedisAddr))
}

func (c *Container) kafkaWriter(topic string) *kafkago.Writer {
	writer := platformkafka.NewWriter(c.Config.KafkaBrokers, topic)
	c.closers = append(c.closers, writer.Close)
	return writer
}

func (c *Container) alertPublisher(producer string) inventoryports.AlertPublisher {
	if !c.Config.KafkaEnabled() {
		return inventorymemory.NewAlertLog()
	}
	return inventorykafka.NewAlertPublisher(c.kafkaWriter(c.Config.KafkaInventoryTopic), producer)
}

func (c *Container) eventPublisher(producer string) orderports.EventPublisher {
	if !c.Config.KafkaEnabled() {
		c.Logger.Warn("KAFKA_BROKERS not set, order events are kept in memory")
		return ordersmemory.NewEventLog()
	}
	return orderskafka.NewEventPublisher(c.kafkaWriter(c.Config.KafkaOrderTopic), producer)
}

func (c *Container) orderRepository() orderports.Repository {
	if c.DB != nil {
		return orderspostgres.NewRepository(c.DB)
	}
	return ordersmemory.NewRepository()
}

func (c *Container) idempotencyStore() orderports.IdempotencyStore {
	switch {
	case c.Redis != nil:
		return ordersredis.NewIdempotencyStore(c.Redis, ordersredis.TTLIdempotency)
	case c.DB != nil:
		return orderspostgres.NewIdempotencyStore(c.DB, orderports.DefaultIdempotencyRetention)
	default:
		return ordersmemory.NewIdempotencyStore()
	}
}

func (c *Container) accountStores() (accountports.Repository, accountports.SessionStore) {
	var repo accountports.Repository = accountsmemory.NewRepository()
	if c.DB != nil {
		repo = accountspostgres.NewRepository(c.DB)
	}
	switch {
	case c.Redis != nil:
		return repo, accountsredis.NewSessionStore(c.Redis)
	case c.DB != nil:
		return repo, accountspostgres.NewSessionStore(c.DB)
	default:
		return repo, accountsmemory.NewSessionStore()
	}
}
