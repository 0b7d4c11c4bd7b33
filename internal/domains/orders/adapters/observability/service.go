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

	inventorydomain "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/b2b-ordering-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order lifecycle manager with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.Int("order.lines", len(input.Lines)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int("order.lines", len(input.Lines)))
	order, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		var insufficient *inventorydomain.InsufficientStockError
		if errors.As(err, &insufficient) {
			s.metrics.recordReservationFailure(ctx, insufficient.ItemID)
			span.SetAttributes(attribute.String("item.id", insufficient.ItemID))
		}
		return nil, s.handleError(ctx, span, err, "failed to place order")
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.Number),
	)
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed",
		slog.String("order.id", order.ID),
		slog.String("order.number", order.Number),
		slog.String("order.total", order.Totals.Total.StringFixed(2)))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return order, nil
}

func (s *Service) ListMyOrders(ctx context.Context, input ordertypes.ListOrdersInput) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListMyOrders", trace.WithAttributes(
		attribute.String("filter.status", input.Status),
		attribute.Int("filter.skip", input.Skip),
		attribute.Int("filter.limit", input.Limit),
	))
	defer span.End()

	orders, err := s.inner.ListMyOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("result.count", len(orders)))
	return orders, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrderStatus", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", id), slog.String("order.status", string(status)))
	order, err := s.inner.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.String("order.id", id), slog.String("order.status", string(status)))
	}
	if order.Status == domain.StatusCancelled {
		s.metrics.recordCancelled(ctx, "admin")
	}
	s.logInfo(ctx, "order status updated", slog.String("order.id", id), slog.String("order.status", string(order.Status)))
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("order.id", id))
	order, err := s.inner.CancelOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("order.id", id))
	}
	s.metrics.recordCancelled(ctx, "customer")
	s.logInfo(ctx, "order cancelled", slog.String("order.id", id))
	return order, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if errors.Is(err, inventorydomain.ErrInvariantViolation) {
			attrs = append(attrs, slog.Bool("alert", true))
		}
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	placed              metric.Int64Counter
	cancelled           metric.Int64Counter
	reservationFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	cancelled, _ := m.Int64Counter("orders.service.orders_cancelled", metric.WithDescription("Number of orders cancelled"))
	failures, _ := m.Int64Counter("orders.service.reservation_failures", metric.WithDescription("Placements rejected for insufficient stock"))
	return serviceMetrics{placed: placed, cancelled: cancelled, reservationFailures: failures}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.placed != nil {
		m.placed.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context, path string) {
	if m.cancelled != nil {
		m.cancelled.Add(ctx, 1, metric.WithAttributes(attribute.String("cancel.path", path)))
	}
}

func (m serviceMetrics) recordReservationFailure(ctx context.Context, itemID string) {
	if m.reservationFailures != nil {
		m.reservationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("item.id", itemID)))
	}
}

var _ ports.Service = (*Service)(nil)
