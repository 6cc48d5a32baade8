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
	ProviderName = "laundry-api"
	ConsumerName = "resident-app"

	StateCatalogSeeded = "vendor catalog seeded"
	StateOrderExists   = "order 7d29cbb4-8a1d-4a47-9f57-4a3a2d1c6a01 exists in BOOKING_CREATED"
	StateOrderMissing  = "no order with the requested id"
)

const (
	ExistingOrderID = "7d29cbb4-8a1d-4a47-9f57-4a3a2d1c6a01"
	MissingOrderID  = "00000000-0000-0000-0000-00000000dead"

	ExampleResidentID = "a2b1f8a6-0d7c-4a1e-8a34-6f2a9b0e5c11"
	ExampleVendorID   = "f41c2d9e-3b8a-44f0-9c6d-2e7a1b5d8f22"
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

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest provides stable booking data for pact interactions.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"residentId":           ExampleResidentID,
		"vendorId":             ExampleVendorID,
		"societyId":            12,
		"pickupAddress":        "A-204, Green Meadows",
		"pickupDatetime":       "2026-09-02T09:00:00Z",
		"expectedDeliveryDate": "2026-09-04T18:00:00Z",
		"deliveryPreference":   "SINGLE",
		"items": []map[string]any{
			{"serviceId": 1, "itemName": "Shirt", "quantity": 4},
		},
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
