package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order store. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		if err := db.AutoMigrate(&orderRecord{}); err != nil {
			slog.Default().Warn("order migration failed", slog.String("error", err.Error()))
		}
	}
	return repo
}

type orderRecord struct {
	ID              string          `gorm:"primaryKey;column:id;type:uuid"`
	AccountID       string          `gorm:"column:account_id;not null;index:idx_orders_account_created,priority:1"`
	Number          string          `gorm:"column:number;size:32;uniqueIndex;not null"`
	Status          string          `gorm:"column:status;type:varchar(32);not null;index"`
	PaymentStatus   string          `gorm:"column:payment_status;type:varchar(32);not null"`
	PaymentMethod   string          `gorm:"column:payment_method;not null"`
	Lines           []lineRecord    `gorm:"column:lines;type:jsonb;serializer:json;not null"`
	ShippingAddress addressRecord   `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  addressRecord   `gorm:"column:billing_address;type:jsonb;serializer:json"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null"`
	Tax             decimal.Decimal `gorm:"column:tax;type:numeric(14,2);not null"`
	Shipping        decimal.Decimal `gorm:"column:shipping;type:numeric(14,2);not null"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	Notes           string          `gorm:"column:notes"`
	Version         int             `gorm:"column:version;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;index:idx_orders_account_created,priority:2,sort:desc"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

type addressRecord struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Create inserts a new order with version 1. A taken order number surfaces
// as ports.ErrDuplicateOrderNumber.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateOrderNumber
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes the mutable columns when the stored version still matches.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":         string(order.Status),
			"payment_status": string(order.PaymentStatus),
			"notes":          order.Notes,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, order.ID); err != nil {
			return nil, err
		}
		return nil, ports.ErrConcurrentModification
	}
	return r.GetByID(ctx, order.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListByAccount(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Where("account_id = ?", filter.AccountID)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	query = query.Order("created_at DESC").Order("number DESC")
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	lines := make([]lineRecord, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, lineRecord{
			ItemID:    l.ItemID,
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total,
		})
	}
	return orderRecord{
		ID:              order.ID,
		AccountID:       order.AccountID,
		Number:          order.Number,
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		PaymentMethod:   order.PaymentMethod,
		Lines:           lines,
		ShippingAddress: addressRecord(order.ShippingAddress),
		BillingAddress:  addressRecord(order.BillingAddress),
		Subtotal:        order.Totals.Subtotal,
		Tax:             order.Totals.Tax,
		Shipping:        order.Totals.Shipping,
		Total:           order.Totals.Total,
		Notes:           order.Notes,
		Version:         order.Version,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func (r *orderRecord) toDomain() *domain.Order {
	lines := make([]domain.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, domain.Line{
			ItemID:    l.ItemID,
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total,
		})
	}
	return &domain.Order{
		ID:              r.ID,
		AccountID:       r.AccountID,
		Number:          r.Number,
		Lines:           lines,
		Status:          domain.Status(r.Status),
		PaymentStatus:   domain.PaymentStatus(r.PaymentStatus),
		PaymentMethod:   r.PaymentMethod,
		ShippingAddress: domain.Address(r.ShippingAddress),
		BillingAddress:  domain.Address(r.BillingAddress),
		Totals: domain.Totals{
			Subtotal: r.Subtotal,
			Tax:      r.Tax,
			Shipping: r.Shipping,
			Total:    r.Total,
		},
		Notes:     r.Notes,
		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
