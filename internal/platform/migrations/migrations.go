package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&catalogItemRecord{},
		&orderRecord{},
		&idempotencyRecord{},
		&accountRecord{},
		&sessionRecord{},
	)
}

// Catalog schema mirrors the catalog Postgres adapter. Stock counters carry
// check constraints so no writer can drive them negative.
type catalogItemRecord struct {
	ID          string          `gorm:"primaryKey;column:id;type:uuid"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description"`
	SKU         string          `gorm:"column:sku;uniqueIndex;not null"`
	Category    string          `gorm:"column:category;index"`
	SubCategory string          `gorm:"column:sub_category"`
	Brand       string          `gorm:"column:brand;index"`
	Images      pq.StringArray  `gorm:"column:images;type:text[]"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(14,2);not null"`
	BulkPricing string          `gorm:"column:bulk_pricing;type:jsonb"`
	Currency    string          `gorm:"column:currency;type:char(3);not null"`
	Available   int             `gorm:"column:available;not null;check:available >= 0"`
	Reserved    int             `gorm:"column:reserved;not null;check:reserved >= 0"`
	MinStock    int             `gorm:"column:min_stock;not null"`
	Active      bool            `gorm:"column:active;not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (catalogItemRecord) TableName() string { return "catalog_items" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID              string          `gorm:"primaryKey;column:id;type:uuid"`
	AccountID       string          `gorm:"column:account_id;not null;index:idx_orders_account_created,priority:1"`
	Number          string          `gorm:"column:number;size:32;uniqueIndex;not null"`
	Status          string          `gorm:"column:status;type:varchar(32);not null;index"`
	PaymentStatus   string          `gorm:"column:payment_status;type:varchar(32);not null"`
	PaymentMethod   string          `gorm:"column:payment_method;not null"`
	Lines           string          `gorm:"column:lines;type:jsonb;not null"`
	ShippingAddress string          `gorm:"column:shipping_address;type:jsonb"`
	BillingAddress  string          `gorm:"column:billing_address;type:jsonb"`
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

// Idempotency keys expire; the purger deletes lapsed rows.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	AccountID   string    `gorm:"column:account_id;index"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null;index"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

// Account schema mirrors the accounts Postgres adapter.
type accountRecord struct {
	ID           string    `gorm:"primaryKey;column:id;type:uuid"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CompanyName  string    `gorm:"column:company_name;not null"`
	BusinessType string    `gorm:"column:business_type;type:varchar(16);not null"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Phone        string    `gorm:"column:phone"`
	Address      string    `gorm:"column:address;type:jsonb"`
	TaxID        string    `gorm:"column:tax_id"`
	Verification string    `gorm:"column:verification_status;type:varchar(16);not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountRecord) TableName() string { return "accounts" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:512"`
	AccountID string    `gorm:"column:account_id;type:uuid;not null;index"`
	Email     string    `gorm:"column:email"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "account_sessions" }
