package types

// LineInput requests quantity units of one catalog item.
type LineInput struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// AddressInput is a postal address as submitted by the caller.
type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CreateOrderInput captures a placement request. AccountID is filled from
// the caller identity by the workflow layer and ignored by the service.
type CreateOrderInput struct {
	IdempotencyKey  string       `json:"idempotencyKey,omitempty"`
	AccountID       string       `json:"accountId,omitempty"`
	Lines           []LineInput  `json:"lines"`
	ShippingAddress AddressInput `json:"shippingAddress"`
	BillingAddress  AddressInput `json:"billingAddress"`
	PaymentMethod   string       `json:"paymentMethod"`
	Notes           string       `json:"notes,omitempty"`
}

// ListOrdersInput pages through the caller's orders.
type ListOrdersInput struct {
	Status string
	Skip   int
	Limit  int
}
