package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/domain"
	"github.com/Apurer/b2b-ordering-api/internal/domains/accounts/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists accounts in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		if err := db.AutoMigrate(&accountRecord{}); err != nil {
			slog.Default().Warn("account migration failed", slog.String("error", err.Error()))
		}
	}
	return repo
}

type accountRecord struct {
	ID           string        `gorm:"primaryKey;column:id;type:uuid"`
	Email        string        `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string        `gorm:"column:password_hash;not null"`
	CompanyName  string        `gorm:"column:company_name;not null"`
	BusinessType string        `gorm:"column:business_type;type:varchar(16);not null"`
	FirstName    string        `gorm:"column:first_name"`
	LastName     string        `gorm:"column:last_name"`
	Phone        string        `gorm:"column:phone"`
	Address      addressRecord `gorm:"column:address;type:jsonb;serializer:json"`
	TaxID        string        `gorm:"column:tax_id"`
	Verification string        `gorm:"column:verification_status;type:varchar(16);not null;index"`
	CreatedAt    time.Time     `gorm:"column:created_at"`
	UpdatedAt    time.Time     `gorm:"column:updated_at"`
}

func (accountRecord) TableName() string { return "accounts" }

type addressRecord struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Create inserts a new account. A taken email surfaces as ports.ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("account is nil")
	}
	record := toRecord(account)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateEmail
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes the mutable profile and verification columns.
func (r *Repository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("account is nil")
	}
	record := toRecord(account)
	result := r.db.WithContext(ctx).
		Model(&record).
		Select("password_hash", "company_name", "business_type", "first_name", "last_name",
			"phone", "address", "tax_id", "verification_status", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record accountRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres account repository not configured")
	}
	return nil
}

func toRecord(a *domain.Account) accountRecord {
	return accountRecord{
		ID:           a.ID,
		Email:        domain.NormalizeEmail(a.Email),
		PasswordHash: a.PasswordHash,
		CompanyName:  a.CompanyName,
		BusinessType: string(a.BusinessType),
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Phone:        a.Phone,
		Address:      addressRecord(a.Address),
		TaxID:        a.TaxID,
		Verification: string(a.Verification),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r accountRecord) toDomain() *domain.Account {
	return &domain.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CompanyName:  r.CompanyName,
		BusinessType: domain.BusinessType(r.BusinessType),
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Address:      domain.Address(r.Address),
		TaxID:        r.TaxID,
		Verification: domain.VerificationStatus(r.Verification),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
