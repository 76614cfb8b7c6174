package gen_test

import (
	"testing"
)

// Generates a JSON client and server for the orders example and round-trips
// requests, responses and errors between them.
func TestGenerate_OrdersExample_RoundTrips(t *testing.T) {
	runExampleIntegrationTest(t, "orders", "client.yaml", "server.yaml")
}

// Same for the CBOR telemetry example, including event stream frames.
func TestGenerate_TelemetryExample_RoundTrips(t *testing.T) {
	runExampleIntegrationTest(t, "telemetry", "client.yaml", "server.yaml")
}

// Same for the AWS Query catalog example: response wrappers, flattened lists
// and recursive structures.
func TestGenerate_CatalogExample_RoundTrips(t *testing.T) {
	runExampleIntegrationTest(t, "catalog", "client.yaml", "server.yaml")
}
