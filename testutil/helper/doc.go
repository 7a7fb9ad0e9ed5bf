// Package helper provides test doubles for the observability interfaces of the lending packages.
//
// The spies capture every call so tests can assert on emitted metrics, spans, and log records
// without a real OpenTelemetry backend. All spies are safe for concurrent use.
package helper
