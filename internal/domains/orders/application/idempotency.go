package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	ordertypes "github.com/Apurer/b2b-ordering-api/internal/domains/orders/application/types"
)

type normalizedCreateOrderInput struct {
	Lines           []ordertypes.LineInput  `json:"lines"`
	ShippingAddress ordertypes.AddressInput `json:"shippingAddress"`
	BillingAddress  ordertypes.AddressInput `json:"billingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Notes           string                  `json:"notes"`
}

// FingerprintCreateOrder builds a deterministic hash of a placement request,
// excluding the idempotency key and the caller.
func FingerprintCreateOrder(input ordertypes.CreateOrderInput) (string, error) {
	normalized := normalizedCreateOrderInput{
		Lines:           make([]ordertypes.LineInput, 0, len(input.Lines)),
		ShippingAddress: normalizeAddress(input.ShippingAddress),
		BillingAddress:  normalizeAddress(input.BillingAddress),
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		Notes:           strings.TrimSpace(input.Notes),
	}
	for _, l := range input.Lines {
		normalized.Lines = append(normalized.Lines, ordertypes.LineInput{ItemID: strings.TrimSpace(l.ItemID), Quantity: l.Quantity})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// ScopedIdempotencyKey namespaces a client key by account so two tenants can
// pick the same key independently.
func ScopedIdempotencyKey(accountID, key string) string {
	return accountID + ":" + strings.TrimSpace(key)
}

func normalizeAddress(a ordertypes.AddressInput) ordertypes.AddressInput {
	return ordertypes.AddressInput{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
