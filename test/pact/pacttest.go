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
	ProviderName = "pharmacy-availability-api"
	ConsumerName = "vaccine-finder-web"

	// UpstreamProviderName is the RiteAid store and slot API this service consumes.
	UpstreamProviderName = "riteaid-stores-api"
	UpstreamConsumerName = ProviderName

	StateStoresNearby     = "two stores exist near postal code 10001"
	StateNoStoresNearby   = "no stores exist near postal code 99999"
	StateStoreLookupFails = "the store locator is unavailable"
	StateStoreHasSlots    = "store 100 has an open first-dose slot"
)

const (
	NearbyPostalCode  = "10001"
	EmptyPostalCode   = "99999"
	FailingPostalCode = "66666"

	OpenStoreNumber   int32 = 100
	ClosedStoreNumber int32 = 200
)

// ExampleStores provides the stable upstream store fixtures.
func ExampleStores() []map[string]any {
	return []map[string]any{
		{"storeNumber": OpenStoreNumber, "address": "1 Main St", "zipcode": NearbyPostalCode, "fullPhone": "(212) 555-0100"},
		{"storeNumber": ClosedStoreNumber, "address": "2 Broadway", "zipcode": NearbyPostalCode, "fullPhone": "(212) 555-0200"},
	}
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file path for the public API consumer.
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

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
