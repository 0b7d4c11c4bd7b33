package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogdomain "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
	inventorydomain "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/domain"
	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
	"github.com/Apurer/b2b-ordering-api/internal/shared/keyedlock"
)

const (
	maxNumberAttempts = 5
	defaultPageSize   = 20
	maxPageSize       = 100
)

// Service is the order lifecycle manager. It is the only component that
// coordinates the catalog, the inventory ledger, and the order store.
type Service struct {
	catalog     catalogports.Repository
	ledger      inventoryports.Ledger
	repo        ports.Repository
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	numbers     domain.NumberGenerator
	now         func() time.Time
	newID       func() string
	locks       *keyedlock.Locker
	logger      *slog.Logger
}

// Option customises optional collaborators of the service.
type Option func(*Service)

func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithNumberGenerator(gen domain.NumberGenerator) Option {
	return func(s *Service) { s.numbers = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the lifecycle manager with its collaborators.
func NewService(catalog catalogports.Repository, ledger inventoryports.Ledger, repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		ledger:  ledger,
		repo:    repo,
		numbers: domain.NewNumberGenerator(),
		now:     time.Now,
		newID:   uuid.NewString,
		locks:   keyedlock.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder prices and reserves every line, then persists a pending order.
// Either every line is reserved and the order is stored, or no reservation
// made by this call remains.
func (s *Service) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	shipping, billing, err := validatePlacement(input)
	if err != nil {
		return nil, mapError(err)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		scoped := ScopedIdempotencyKey(caller.AccountID, key)
		unlock, err := s.locks.Lock(ctx, "idem:"+scoped)
		if err != nil {
			return nil, err
		}
		defer unlock()
		if fingerprint, err = FingerprintCreateOrder(input); err != nil {
			return nil, err
		}
		if existing, err := s.replay(ctx, scoped, fingerprint); existing != nil || err != nil {
			return existing, err
		}
		key = scoped
	} else {
		key = ""
	}

	items, err := s.fetchItems(ctx, input.Lines)
	if err != nil {
		return nil, mapError(err)
	}

	holds := newReservationSet(s.ledger)
	lines := make([]domain.Line, 0, len(input.Lines))
	for i, requested := range input.Lines {
		line, err := s.priceAndReserve(ctx, holds, items[i], requested.Quantity)
		if err != nil {
			return nil, s.abortPlacement(ctx, holds, err)
		}
		lines = append(lines, line)
	}

	now := s.now().UTC()
	order, err := domain.NewOrder(s.newID(), caller.AccountID, "", lines, shipping, billing, input.PaymentMethod, input.Notes, now)
	if err != nil {
		return nil, s.abortPlacement(ctx, holds, err)
	}
	saved, err := s.persistNew(ctx, order)
	if err != nil {
		return nil, s.abortPlacement(ctx, holds, err)
	}

	if key != "" {
		if replayed, err := s.recordIdempotency(ctx, holds, saved, key, caller.AccountID, fingerprint); replayed != nil || err != nil {
			return replayed, err
		}
	}

	s.publish(ctx, ports.EventOrderPlaced, saved, "")
	return saved, nil
}

// GetOrder returns one of the caller's orders.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !order.OwnedBy(caller.AccountID) {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// ListMyOrders pages through the caller's orders, newest first.
func (s *Service) ListMyOrders(ctx context.Context, input ordertypes.ListOrdersInput) ([]*domain.Order, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	filter := ports.ListFilter{AccountID: caller.AccountID, Skip: input.Skip, Limit: input.Limit}
	if strings.TrimSpace(input.Status) != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Status = &status
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	orders, err := s.repo.ListByAccount(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// UpdateOrderStatus is the administrative lifecycle path. Any authenticated
// caller may move any order along the allowed transitions; moving to
// cancelled returns every line's reservation to the ledger first.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return nil, mapError(err)
	}
	unlock, err := s.locks.Lock(ctx, "order:"+id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, status)
	}
	if status == domain.StatusCancelled {
		return s.cancelLocked(ctx, order)
	}

	previous := order.Status
	next := order.Clone()
	if err := next.TransitionTo(status, s.now().UTC()); err != nil {
		return nil, err
	}
	saved, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, ports.EventOrderStatusChanged, saved, previous)
	return saved, nil
}

// CancelOrder is the customer path: only the owner may cancel and only while
// the order is still pending.
func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	unlock, err := s.locks.Lock(ctx, "order:"+id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !order.OwnedBy(caller.AccountID) {
		return nil, ErrUnauthorized
	}
	if order.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: order is %s", domain.ErrInvalidStateForCancellation, order.Status)
	}
	return s.cancelLocked(ctx, order)
}

// cancelLocked releases the order's reservations and records the
// cancellation. The caller holds the order lock. Once releasing starts the
// operation runs to completion regardless of ctx; if recording fails the
// released quantities are reserved again so the ledger matches the order.
func (s *Service) cancelLocked(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	detached := context.WithoutCancel(ctx)
	released, err := s.releaseLines(detached, order)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	next := order.Clone()
	if err := next.TransitionTo(domain.StatusCancelled, s.now().UTC()); err != nil {
		return nil, errors.Join(err, s.restore(detached, order, released))
	}
	saved, err := s.repo.Update(detached, next)
	if err != nil {
		return nil, errors.Join(mapError(err), s.restore(detached, order, released))
	}
	s.publish(ctx, ports.EventOrderStatusChanged, saved, previous)
	return saved, nil
}

// releaseLines returns each line's quantity to the ledger. On failure the
// lines released so far are reserved again and the error is returned.
func (s *Service) releaseLines(ctx context.Context, order *domain.Order) ([]domain.Line, error) {
	released := make([]domain.Line, 0, len(order.Lines))
	for _, line := range order.Lines {
		if err := s.ledger.Release(ctx, line.ItemID, line.Quantity); err != nil {
			if errors.Is(err, inventorydomain.ErrInvariantViolation) {
				s.logger.LogAttrs(ctx, slog.LevelError, "inventory invariant violated while releasing order",
					slog.Bool("alert", true),
					slog.String("order.id", order.ID),
					slog.String("item.id", line.ItemID),
					slog.String("error", err.Error()))
			}
			return nil, errors.Join(err, s.restore(ctx, order, released))
		}
		released = append(released, line)
	}
	return released, nil
}

// restore reserves lines again after a cancellation could not be recorded.
func (s *Service) restore(ctx context.Context, order *domain.Order, lines []domain.Line) error {
	var errs []error
	for _, line := range lines {
		if err := s.ledger.Reserve(ctx, line.ItemID, line.Quantity); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to restore reservation after aborted cancellation",
				slog.Bool("alert", true),
				slog.String("order.id", order.ID),
				slog.String("item.id", line.ItemID),
				slog.Int("quantity", line.Quantity),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) fetchItems(ctx context.Context, lines []ordertypes.LineInput) ([]*catalogdomain.Item, error) {
	items := make([]*catalogdomain.Item, 0, len(lines))
	for _, line := range lines {
		item, err := s.catalog.GetByID(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				return nil, &ItemNotFoundError{ItemID: line.ItemID}
			}
			return nil, err
		}
		if !item.Active {
			return nil, &ItemNotFoundError{ItemID: line.ItemID}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) priceAndReserve(ctx context.Context, holds *reservationSet, item *catalogdomain.Item, quantity int) (domain.Line, error) {
	price, err := catalogdomain.ResolveUnitPrice(item, quantity)
	if err != nil {
		return domain.Line{}, err
	}
	line, err := domain.NewLine(item.ID, item.Name, item.SKU, quantity, price)
	if err != nil {
		return domain.Line{}, err
	}
	if err := holds.Reserve(ctx, item.ID, quantity); err != nil {
		return domain.Line{}, err
	}
	return line, nil
}

// persistNew stores order, drawing a fresh number whenever the store reports
// a collision.
func (s *Service) persistNew(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order.Number = s.numbers.Next()
		saved, err := s.repo.Create(ctx, order)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, ports.ErrDuplicateOrderNumber) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("allocate order number after %d attempts: %w", maxNumberAttempts, lastErr)
}

// abortPlacement releases every hold of a failed placement and returns the
// original error joined with any release failure.
func (s *Service) abortPlacement(ctx context.Context, holds *reservationSet, cause error) error {
	if holds.Len() == 0 {
		return mapError(cause)
	}
	if err := holds.ReleaseAll(ctx); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to release reservations of aborted placement",
			slog.Bool("alert", true),
			slog.String("error", err.Error()))
		return errors.Join(mapError(cause), err)
	}
	return mapError(cause)
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := s.repo.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// recordIdempotency stores the key for a freshly placed order. When another
// process recorded the same key first, the new order is voided and the
// stored one is replayed instead.
func (s *Service) recordIdempotency(ctx context.Context, holds *reservationSet, order *domain.Order, key, accountID, fingerprint string) (*domain.Order, error) {
	record, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         key,
		AccountID:   accountID,
		RequestHash: fingerprint,
		OrderID:     order.ID,
	})
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, ports.ErrIdempotencyConflict) {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record idempotency key",
			slog.String("order.id", order.ID),
			slog.String("error", err.Error()))
		return nil, nil
	}

	detached := context.WithoutCancel(ctx)
	voided := order.Clone()
	if releaseErr := holds.ReleaseAll(detached); releaseErr != nil {
		return nil, errors.Join(err, releaseErr)
	}
	if transErr := voided.TransitionTo(domain.StatusCancelled, s.now().UTC()); transErr == nil {
		if _, updErr := s.repo.Update(detached, voided); updErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to void duplicate order",
				slog.String("order.id", order.ID),
				slog.String("error", updErr.Error()))
		}
	}
	if record == nil || record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	return s.repo.GetByID(ctx, record.OrderID)
}

func (s *Service) publish(ctx context.Context, eventType string, order *domain.Order, previous domain.Status) {
	if s.events == nil {
		return
	}
	event := ports.OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		AccountID:      order.AccountID,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		Total:          order.Totals.Total.StringFixed(2),
		OccurredAt:     s.now().UTC(),
	}
	for _, line := range order.Lines {
		event.Lines = append(event.Lines, ports.OrderEventLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
		})
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("event.type", eventType),
			slog.String("order.id", order.ID),
			slog.String("error", err.Error()))
	}
}

func validatePlacement(input ordertypes.CreateOrderInput) (domain.Address, domain.Address, error) {
	if len(input.Lines) == 0 {
		return domain.Address{}, domain.Address{}, domain.ErrEmptyLines
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.ItemID) == "" {
			return domain.Address{}, domain.Address{}, domain.ErrMissingItem
		}
		if line.Quantity <= 0 {
			return domain.Address{}, domain.Address{}, fmt.Errorf("%w: item %s", domain.ErrInvalidQuantity, line.ItemID)
		}
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return domain.Address{}, domain.Address{}, domain.ErrMissingPaymentMethod
	}
	shipping := toAddress(input.ShippingAddress)
	if err := shipping.Validate(); err != nil {
		return domain.Address{}, domain.Address{}, fmt.Errorf("shipping %w", err)
	}
	billing := toAddress(input.BillingAddress)
	if err := billing.Validate(); err != nil {
		return domain.Address{}, domain.Address{}, fmt.Errorf("billing %w", err)
	}
	return shipping, billing, nil
}

func toAddress(a ordertypes.AddressInput) domain.Address {
	n := normalizeAddress(a)
	return domain.Address{Street: n.Street, City: n.City, State: n.State, PostalCode: n.PostalCode, Country: n.Country}
}

var _ ports.Service = (*Service)(nil)
