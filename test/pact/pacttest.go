//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "b2b-ordering-api"
	ConsumerName = "buyer-portal"

	StateItemExists   = "catalog item 0b5c9a4e-7c55-4f3b-9d7e-3f1a2b6c8d10 exists"
	StateItemMissing  = "no catalog item 9f1d2c3b-4a5e-4f60-8b7a-1c2d3e4f5a6b"
	StateBuyerExists  = "buyer pact.buyer@example.com exists"
	StateOrdersLocked = "orders require a session"
)

const (
	ExistingItemID = "0b5c9a4e-7c55-4f3b-9d7e-3f1a2b6c8d10"
	MissingItemID  = "9f1d2c3b-4a5e-4f60-8b7a-1c2d3e4f5a6b"

	BuyerEmail    = "pact.buyer@example.com"
	BuyerPassword = "pact-password"
)

const (
	exampleItemName = "Stretch Wrap 500mm"
	exampleItemSKU  = "SW-500"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the buyer portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleItemName and ExampleItemSKU describe the seeded catalog item.
func ExampleItemName() string { return exampleItemName }
func ExampleItemSKU() string  { return exampleItemSKU }

// ExampleAddress is a complete postal address for account and order payloads.
func ExampleAddress() map[string]any {
	return map[string]any{
		"street":     "1 Dock Road",
		"city":       "Leeds",
		"state":      "West Yorkshire",
		"postalCode": "LS1 1AA",
		"country":    "GB",
	}
}

// ExampleOrderPayload places two units of the seeded item.
func ExampleOrderPayload() map[string]any {
	return map[string]any{
		"items":           []map[string]any{{"itemId": ExistingItemID, "quantity": 2}},
		"shippingAddress": ExampleAddress(),
		"billingAddress":  ExampleAddress(),
		"paymentMethod":   "invoice",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
