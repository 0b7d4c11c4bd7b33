package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	accounttypes "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

const tracerName = "github.com/Apurer/b2b-ordering-api/internal/domains/accounts/adapters/observability/service"

// Service decorates the account service with tracing, logging, and metrics.
// Credentials and tokens are never logged.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core account service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Register(ctx context.Context, input accounttypes.RegisterInput) (*accounttypes.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Register", trace.WithAttributes(attribute.String("account.business_type", input.BusinessType)))
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "registration failed")
	}
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "account registered", slog.String("account.id", result.Account.ID))
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*accounttypes.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Login")
	defer span.End()
	result, err := s.inner.Login(ctx, email, password)
	if err != nil {
		s.metrics.recordLoginFailure(ctx)
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	s.metrics.recordLogin(ctx)
	span.SetAttributes(attribute.String("account.id", result.Account.ID))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "AccountService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

func (s *Service) Me(ctx context.Context) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Me")
	defer span.End()
	return s.inner.Me(ctx)
}

func (s *Service) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.GetAccount", trace.WithAttributes(attribute.String("account.id", id)))
	defer span.End()
	return s.inner.GetAccount(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, input accounttypes.UpdateProfileInput) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.UpdateProfile")
	defer span.End()
	account, err := s.inner.UpdateProfile(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile")
	}
	return account, nil
}

func (s *Service) Verify(ctx context.Context, accountID string, status domain.VerificationStatus) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Verify", trace.WithAttributes(
		attribute.String("account.id", accountID),
		attribute.String("account.verification", string(status)),
	))
	defer span.End()
	account, err := s.inner.Verify(ctx, accountID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to verify account", slog.String("account.id", accountID))
	}
	s.logInfo(ctx, "account verification changed",
		slog.String("account.id", accountID),
		slog.String("account.verification", string(account.Verification)))
	return account, nil
}

// Authenticate runs on every request, so it only traces.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Authenticate")
	defer span.End()
	id, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return identity.Identity{}, err
	}
	return id, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

type serviceMetrics struct {
	registered    metric.Int64Counter
	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("accounts.service.registered", metric.WithDescription("Number of accounts registered"))
	logins, _ := m.Int64Counter("accounts.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("accounts.service.login_failures", metric.WithDescription("Number of rejected logins"))
	return serviceMetrics{registered: registered, logins: logins, loginFailures: failures}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLoginFailure(ctx context.Context) {
	if m.loginFailures != nil {
		m.loginFailures.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
