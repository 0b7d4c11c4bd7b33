package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
)

const tracerName = "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/adapters/observability/ledger"

// Ledger decorates an inventory ledger with spans, logs, and counters.
type Ledger struct {
	inner   ports.Ledger
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics ledgerMetrics
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(l *Ledger) { l.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(l *Ledger) { l.metrics = newLedgerMetrics(m) }
}

// New wraps inner.
func New(inner ports.Ledger, opts ...Option) ports.Ledger {
	l := &Ledger{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.tracer == nil {
		l.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return l
}

func (l *Ledger) Reserve(ctx context.Context, itemID string, quantity int) error {
	ctx, span := l.tracer.Start(ctx, "InventoryLedger.Reserve", trace.WithAttributes(
		attribute.String("item.id", itemID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	if err := l.inner.Reserve(ctx, itemID, quantity); err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			l.metrics.add(ctx, l.metrics.rejected, itemID)
			span.SetAttributes(attribute.Int("stock.available", insufficient.Available))
		}
		return l.handleError(ctx, span, err, "reservation failed", itemID)
	}
	l.metrics.add(ctx, l.metrics.reserved, itemID)
	return nil
}

func (l *Ledger) Release(ctx context.Context, itemID string, quantity int) error {
	ctx, span := l.tracer.Start(ctx, "InventoryLedger.Release", trace.WithAttributes(
		attribute.String("item.id", itemID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	if err := l.inner.Release(ctx, itemID, quantity); err != nil {
		return l.handleError(ctx, span, err, "release failed", itemID)
	}
	l.metrics.add(ctx, l.metrics.released, itemID)
	return nil
}

func (l *Ledger) Levels(ctx context.Context, itemID string) (catalogdomain.Stock, error) {
	ctx, span := l.tracer.Start(ctx, "InventoryLedger.Levels", trace.WithAttributes(attribute.String("item.id", itemID)))
	defer span.End()

	stock, err := l.inner.Levels(ctx, itemID)
	if err != nil {
		return catalogdomain.Stock{}, l.handleError(ctx, span, err, "stock lookup failed", itemID)
	}
	return stock, nil
}

func (l *Ledger) handleError(ctx context.Context, span trace.Span, err error, msg, itemID string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if l.logger == nil {
		return err
	}
	level := slog.LevelWarn
	attrs := []slog.Attr{slog.String("item.id", itemID), slog.String("error", err.Error())}
	if errors.Is(err, domain.ErrInvariantViolation) {
		level = slog.LevelError
		attrs = append(attrs, slog.Bool("alert", true))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

type ledgerMetrics struct {
	reserved metric.Int64Counter
	released metric.Int64Counter
	rejected metric.Int64Counter
}

func newLedgerMetrics(m metric.Meter) ledgerMetrics {
	if m == nil {
		return ledgerMetrics{}
	}
	reserved, _ := m.Int64Counter("inventory.ledger.reservations", metric.WithDescription("Successful reservations"))
	released, _ := m.Int64Counter("inventory.ledger.releases", metric.WithDescription("Successful releases"))
	rejected, _ := m.Int64Counter("inventory.ledger.rejections", metric.WithDescription("Reservations rejected for insufficient stock"))
	return ledgerMetrics{reserved: reserved, released: released, rejected: rejected}
}

func (m ledgerMetrics) add(ctx context.Context, counter metric.Int64Counter, itemID string) {
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("item.id", itemID)))
	}
}
