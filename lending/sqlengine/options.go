package sqlengine

import (
	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// Option defines a functional option for configuring Dataset.
type Option func(*Dataset) error

// WithDialect sets the SQL dialect, DialectPostgres (default) or DialectSQLite.
func WithDialect(dialect string) Option {
	return func(ds *Dataset) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			ds.dialectName = dialect
			return nil
		default:
			return lending.ErrUnsupportedDialect
		}
	}
}

// WithTablePrefix sets the prefix of all table names, "library_" by default.
func WithTablePrefix(prefix string) Option {
	return func(ds *Dataset) error {
		if prefix == "" {
			return lending.ErrEmptyTablePrefix
		}

		ds.tablePrefix = prefix

		return nil
	}
}

// WithLogger sets the logger for the Dataset.
//
// Debug level: SQL queries with execution timing and row counts
// Warn level: Non-critical issues like failing to close rows
// Error level: Failures that cause a query to fail.
func WithLogger(logger lending.Logger) Option {
	return func(ds *Dataset) error {
		ds.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Dataset.
// It takes precedence over the plain logger and correlates log lines with active spans.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(ds *Dataset) error {
		ds.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Dataset.
// It receives query durations, row counts, and query errors.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(ds *Dataset) error {
		ds.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Dataset.
// Every query is wrapped in a span.
func WithTracing(collector lending.TracingCollector) Option {
	return func(ds *Dataset) error {
		ds.tracingCollector = collector
		return nil
	}
}
