package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogtypes "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/application/types"
	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) CreateItem(ctx context.Context, input catalogtypes.CreateItemInput) (*catalogdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateItem", trace.WithAttributes(attribute.String("item.sku", input.SKU)))
	defer span.End()

	s.logInfo(ctx, "creating catalog item", slog.String("item.sku", input.SKU))
	item, err := s.inner.CreateItem(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create catalog item", slog.String("item.sku", input.SKU))
	}
	span.SetAttributes(attribute.String("item.id", item.ID))
	s.metrics.recordCreated(ctx, item.Category)
	s.logInfo(ctx, "catalog item created", slog.String("item.id", item.ID), slog.Int("stock.available", item.Stock.Available))
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, input catalogtypes.UpdateItemInput) (*catalogdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateItem", trace.WithAttributes(attribute.String("item.id", input.ID)))
	defer span.End()

	s.logInfo(ctx, "updating catalog item", slog.String("item.id", input.ID))
	item, err := s.inner.UpdateItem(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update catalog item", slog.String("item.id", input.ID))
	}
	s.logInfo(ctx, "catalog item updated", slog.String("item.id", item.ID))
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*catalogdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetItem", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	item, err := s.inner.GetItem(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load catalog item", slog.String("item.id", id))
	}
	return item, nil
}

func (s *Service) FindItems(ctx context.Context, filter catalogports.ItemFilter) ([]*catalogdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.FindItems",
		trace.WithAttributes(attribute.String("filter.category", filter.Category), attribute.Int("filter.limit", filter.Limit)))
	defer span.End()

	items, err := s.inner.FindItems(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search catalog")
	}
	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteItem", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting catalog item", slog.String("item.id", id))
	if err := s.inner.DeleteItem(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete catalog item", slog.String("item.id", id))
	}
	s.logInfo(ctx, "catalog item deleted", slog.String("item.id", id))
	return nil
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
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	itemsCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsCreated, _ := m.Int64Counter("catalog.service.items_created", metric.WithDescription("Number of catalog items created"))
	return serviceMetrics{itemsCreated: itemsCreated}
}

func (m serviceMetrics) recordCreated(ctx context.Context, category string) {
	if m.itemsCreated != nil {
		m.itemsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("item.category", category)))
	}
}

var _ catalogports.Service = (*Service)(nil)
