package app

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	platformkafka "github.com/Apurer/b2b-ordering-api/internal/platform/messaging/kafka"
	platformobservability "github.com/Apurer/b2b-ordering-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/b2b-ordering-api/internal/platform/postgres"
)

const defaultSessionTTL = 24 * time.Hour

// Config carries environment-driven settings shared by every process.
type Config struct {
	Port                string
	Environment         string
	PostgresDSN         string
	RedisAddr           string
	KafkaBrokers        []string
	KafkaOrderTopic     string
	KafkaInventoryTopic string
	TemporalAddress     string
	TemporalNamespace   string
	TemporalDisabled    bool
	SessionTTL          time.Duration

	LogLevel         slog.Level
	TraceExporter    string
	OTLPEndpoint     string
	OTLPInsecure     bool
	TraceSampleRatio float64

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBQueryLogging    bool
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints. A .env file in the working directory seeds variables
// that are not already set.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:                envDefault("PORT", "8080"),
		Environment:         envDefault("ENVIRONMENT", "local"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:        platformkafka.SplitBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:     envDefault("KAFKA_ORDER_TOPIC", "orders.events"),
		KafkaInventoryTopic: envDefault("KAFKA_INVENTORY_TOPIC", "inventory.alerts"),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		SessionTTL:          defaultSessionTTL,

		TraceExporter:  envDefault("OTEL_TRACES_EXPORTER", platformobservability.ExporterOTLP),
		OTLPEndpoint:   strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure:   strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")) != "0",
		DBQueryLogging: isTruthy(os.Getenv("DB_QUERY_LOGGING")),
	}
	level, err := platformobservability.ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level
	if raw := strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER_ARG")); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return Config{}, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be a number between 0 and 1")
		}
		cfg.TraceSampleRatio = ratio
	}
	if cfg.DBMaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}
	lifetime, err := envInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.DBConnMaxLifetime = time.Duration(lifetime) * time.Minute
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	return cfg, nil
}

// KafkaEnabled reports whether events should leave the process.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Telemetry returns the observability settings for the named process.
func (c Config) Telemetry(serviceName string) platformobservability.Settings {
	return platformobservability.Settings{
		ServiceName:   serviceName,
		Environment:   c.Environment,
		LogLevel:      c.LogLevel,
		TraceExporter: c.TraceExporter,
		OTLPEndpoint:  c.OTLPEndpoint,
		OTLPInsecure:  c.OTLPInsecure,
		SampleRatio:   c.TraceSampleRatio,
	}
}

// PostgresOptions returns the pool and logging options for Connect.
func (c Config) PostgresOptions() []platformpostgres.Option {
	opts := []platformpostgres.Option{platformpostgres.WithPool(platformpostgres.Pool{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	})}
	if c.DBQueryLogging {
		opts = append(opts, platformpostgres.WithQueryLogging())
	}
	return opts
}

// envInt reads a non-negative integer, returning fallback when unset.
func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
