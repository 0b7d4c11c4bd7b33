package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogtypes "github.com/Apurer/b2b-ordering-api/internal/domains/catalog/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/catalog/domain"
)

// BulkPrice is one tier of a bulk pricing table.
type BulkPrice struct {
	MinQuantity int             `json:"minQuantity" binding:"required,gt=0"`
	Price       decimal.Decimal `json:"price"`
}

// Price is the HTTP representation of an item's pricing table.
type Price struct {
	Base      decimal.Decimal `json:"base"`
	BulkPrice []BulkPrice     `json:"bulkPrice,omitempty"`
	Currency  string          `json:"currency,omitempty"`
}

// Stock is the read-only view of inventory counters.
type Stock struct {
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Minimum   int `json:"minimum"`
}

// Item is the HTTP representation of a catalog item.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SKU         string    `json:"sku"`
	Category    string    `json:"category,omitempty"`
	SubCategory string    `json:"subCategory,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Images      []string  `json:"images"`
	Price       Price     `json:"price"`
	Stock       Stock     `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateItem captures the payload of a new listing.
type CreateItem struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	SKU         string   `json:"sku" binding:"required"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Brand       string   `json:"brand"`
	Images      []string `json:"images"`
	Price       Price    `json:"price"`
	Available   int      `json:"available" binding:"gte=0"`
	Minimum     *int     `json:"minimum,omitempty"`
}

// UpdateItem captures a partial update while preserving field presence.
type UpdateItem struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	SKU         *string   `json:"sku,omitempty"`
	Category    *string   `json:"category,omitempty"`
	SubCategory *string   `json:"subCategory,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Price       *Price    `json:"price,omitempty"`
	Minimum     *int      `json:"minimum,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

// ToCreateInput maps a create payload to the application input.
func ToCreateInput(payload CreateItem) catalogtypes.CreateItemInput {
	return catalogtypes.CreateItemInput{
		Name:        payload.Name,
		Description: payload.Description,
		SKU:         payload.SKU,
		Category:    payload.Category,
		SubCategory: payload.SubCategory,
		Brand:       payload.Brand,
		Images:      append([]string(nil), payload.Images...),
		Price:       toPriceInput(payload.Price),
		Available:   payload.Available,
		Minimum:     payload.Minimum,
	}
}

// ToUpdateInput maps an update payload to the application input.
func ToUpdateInput(id string, payload UpdateItem) catalogtypes.UpdateItemInput {
	input := catalogtypes.UpdateItemInput{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
		SKU:         payload.SKU,
		Category:    payload.Category,
		SubCategory: payload.SubCategory,
		Brand:       payload.Brand,
		Images:      payload.Images,
		Minimum:     payload.Minimum,
		Active:      payload.Active,
	}
	if payload.Price != nil {
		price := toPriceInput(*payload.Price)
		input.Price = &price
	}
	return input
}

func toPriceInput(p Price) catalogtypes.PriceInput {
	bulk := make([]catalogtypes.BulkPriceInput, 0, len(p.BulkPrice))
	for _, bp := range p.BulkPrice {
		bulk = append(bulk, catalogtypes.BulkPriceInput{MinQuantity: bp.MinQuantity, UnitPrice: bp.Price})
	}
	return catalogtypes.PriceInput{Base: p.Base, Bulk: bulk, Currency: p.Currency}
}

// FromDomainItem maps the aggregate into its transport shape.
func FromDomainItem(item *domain.Item) Item {
	if item == nil {
		return Item{}
	}
	bulk := make([]BulkPrice, 0, len(item.Price.Bulk))
	for _, bp := range item.Price.Bulk {
		bulk = append(bulk, BulkPrice{MinQuantity: bp.MinQuantity, Price: bp.UnitPrice})
	}
	images := item.Images
	if images == nil {
		images = []string{}
	}
	return Item{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		SKU:         item.SKU,
		Category:    item.Category,
		SubCategory: item.SubCategory,
		Brand:       item.Brand,
		Images:      images,
		Price:       Price{Base: item.Price.Base, BulkPrice: bulk, Currency: item.Price.Currency},
		Stock:       Stock{Available: item.Stock.Available, Reserved: item.Stock.Reserved, Minimum: item.Stock.Minimum},
		Active:      item.Active,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// FromDomainItems maps a result page.
func FromDomainItems(items []*domain.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, FromDomainItem(item))
	}
	return out
}
