package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists catalog items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		if err := db.AutoMigrate(&ItemRecord{}); err != nil {
			slog.Default().Warn("catalog item migration failed", slog.String("error", err.Error()))
		}
	}
	return repo
}

// ItemRecord maps a catalog item to the catalog_items table. It is exported
// so the inventory ledger can lock the same row.
type ItemRecord struct {
	ID          string          `gorm:"primaryKey;column:id;type:uuid"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description"`
	SKU         string          `gorm:"column:sku;uniqueIndex;not null"`
	Category    string          `gorm:"column:category;index"`
	SubCategory string          `gorm:"column:sub_category"`
	Brand       string          `gorm:"column:brand;index"`
	Images      pq.StringArray  `gorm:"column:images;type:text[]"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(14,2);not null"`
	BulkPricing bulkTiers       `gorm:"column:bulk_pricing;type:jsonb"`
	Currency    string          `gorm:"column:currency;type:char(3);not null"`
	Available   int             `gorm:"column:available;not null;check:available >= 0"`
	Reserved    int             `gorm:"column:reserved;not null;check:reserved >= 0"`
	MinStock    int             `gorm:"column:min_stock;not null"`
	Active      bool            `gorm:"column:active;not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (ItemRecord) TableName() string { return "catalog_items" }

type bulkTier struct {
	MinQuantity int             `json:"minQuantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type bulkTiers []bulkTier

func (t bulkTiers) Value() (driver.Value, error) {
	if t == nil {
		t = bulkTiers{}
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func (t *bulkTiers) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported bulk pricing type %T", src)
	}
}

// Save inserts an item or updates its descriptive and pricing columns.
// Available and reserved counters are only written on insert.
func (r *Repository) Save(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("item is nil")
	}
	record := ToRecord(item)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":         record.Name,
				"description":  record.Description,
				"sku":          record.SKU,
				"category":     record.Category,
				"sub_category": record.SubCategory,
				"brand":        record.Brand,
				"images":       record.Images,
				"base_price":   record.BasePrice,
				"bulk_pricing": record.BulkPricing,
				"currency":     record.Currency,
				"min_stock":    record.MinStock,
				"active":       record.Active,
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateSKU
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an item by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record ItemRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomain(), nil
}

// UpdateStock overwrites the available and reserved counters of an item.
func (r *Repository) UpdateStock(ctx context.Context, id string, stock domain.Stock) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if err := stock.Validate(); err != nil {
		return err
	}
	return UpdateStockTx(r.db.WithContext(ctx), id, stock)
}

// UpdateStockTx writes available and reserved using tx, which may be a transaction.
func UpdateStockTx(tx *gorm.DB, id string, stock domain.Stock) error {
	result := tx.Model(&ItemRecord{}).Where("id = ?", id).Updates(map[string]any{
		"available":  stock.Available,
		"reserved":   stock.Reserved,
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Find lists active items matching filter, newest first.
func (r *Repository) Find(ctx context.Context, filter ports.ItemFilter) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&ItemRecord{}).Where("active = ?", true)
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Brand != "" {
		query = query.Where("LOWER(brand) = LOWER(?)", filter.Brand)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.MinPrice != nil {
		query = query.Where("base_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("base_price <= ?", *filter.MaxPrice)
	}
	if filter.InStock {
		query = query.Where("available > 0")
	}
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []ItemRecord
	if err := query.Order("created_at DESC").Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].ToDomain())
	}
	return items, nil
}

// Delete removes an item by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&ItemRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres catalog repository not configured")
	}
	return nil
}

// ToRecord converts a domain item into its row representation.
func ToRecord(item *domain.Item) ItemRecord {
	tiers := make(bulkTiers, 0, len(item.Price.Bulk))
	for _, bp := range item.Price.Bulk {
		tiers = append(tiers, bulkTier{MinQuantity: bp.MinQuantity, UnitPrice: bp.UnitPrice})
	}
	return ItemRecord{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		SKU:         item.SKU,
		Category:    item.Category,
		SubCategory: item.SubCategory,
		Brand:       item.Brand,
		Images:      pq.StringArray(append([]string(nil), item.Images...)),
		BasePrice:   item.Price.Base,
		BulkPricing: tiers,
		Currency:    item.Price.Currency,
		Available:   item.Stock.Available,
		Reserved:    item.Stock.Reserved,
		MinStock:    item.Stock.Minimum,
		Active:      item.Active,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToDomain converts a row into the catalog aggregate.
func (r ItemRecord) ToDomain() *domain.Item {
	bulk := make([]domain.BulkBreakpoint, 0, len(r.BulkPricing))
	for _, tier := range r.BulkPricing {
		bulk = append(bulk, domain.BulkBreakpoint{MinQuantity: tier.MinQuantity, UnitPrice: tier.UnitPrice})
	}
	return &domain.Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		SKU:         r.SKU,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		Brand:       r.Brand,
		Images:      append([]string(nil), r.Images...),
		Price:       domain.Price{Base: r.BasePrice, Bulk: bulk, Currency: r.Currency},
		Stock:       domain.Stock{Available: r.Available, Reserved: r.Reserved, Minimum: r.MinStock},
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
