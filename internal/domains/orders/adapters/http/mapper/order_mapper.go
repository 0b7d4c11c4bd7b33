package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/domain"
)

// Address is a postal address on the wire.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderLineRequest asks for quantity units of an item.
type OrderLineRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

// CreateOrder is the placement payload. The idempotency key travels in the
// Idempotency-Key header.
type CreateOrder struct {
	Items           []OrderLineRequest `json:"items" binding:"required"`
	ShippingAddress Address            `json:"shippingAddress"`
	BillingAddress  Address            `json:"billingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Notes           string             `json:"notes,omitempty"`
}

// UpdateStatus is the payload of the administrative status change.
type UpdateStatus struct {
	Status string `json:"status" binding:"required"`
}

// OrderLine is a priced line as returned to clients.
type OrderLine struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	AccountID       string          `json:"accountId"`
	Items           []OrderLine     `json:"items"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ToCreateOrderInput maps the placement payload to the application input.
func ToCreateOrderInput(payload CreateOrder, idempotencyKey string) ordertypes.CreateOrderInput {
	lines := make([]ordertypes.LineInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		lines = append(lines, ordertypes.LineInput{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	return ordertypes.CreateOrderInput{
		IdempotencyKey:  idempotencyKey,
		Lines:           lines,
		ShippingAddress: ordertypes.AddressInput(payload.ShippingAddress),
		BillingAddress:  ordertypes.AddressInput(payload.BillingAddress),
		PaymentMethod:   payload.PaymentMethod,
		Notes:           payload.Notes,
	}
}

// FromDomainOrder maps an aggregate to its HTTP representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	lines := make([]OrderLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, OrderLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total,
		})
	}
	return Order{
		ID:              order.ID,
		OrderNumber:     order.Number,
		AccountID:       order.AccountID,
		Items:           lines,
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		PaymentMethod:   order.PaymentMethod,
		ShippingAddress: Address(order.ShippingAddress),
		BillingAddress:  Address(order.BillingAddress),
		Subtotal:        order.Totals.Subtotal,
		Tax:             order.Totals.Tax,
		Shipping:        order.Totals.Shipping,
		Total:           order.Totals.Total,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// FromDomainOrders maps a page of orders.
func FromDomainOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order))
	}
	return out
}
