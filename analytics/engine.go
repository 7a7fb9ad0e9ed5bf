package analytics

import (
	"context"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// Engine runs the lending aggregations against a lending.Dataset.
// It holds no mutable state, so one Engine can serve any number of concurrent callers.
type Engine struct {
	dataset          lending.Dataset
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
	tracingCollector lending.TracingCollector
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// NewEngine creates an Engine reading from the given dataset.
func NewEngine(dataset lending.Dataset, options ...Option) (*Engine, error) {
	if dataset == nil {
		return nil, lending.ErrNilDataset
	}

	engine := &Engine{dataset: dataset}

	for _, option := range options {
		if err := option(engine); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// WithLogger sets the logger for the Engine.
func WithLogger(logger lending.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// It takes precedence over the logger set with WithLogger.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
func WithTracing(collector lending.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

// observe runs one operation wrapped in the Engine's tracing, metrics, and logging.
func observe[T any](
	ctx context.Context,
	e *Engine,
	operation string,
	run func(ctx context.Context) (T, error),
) (T, error) {

	ctx, span := e.startOperationSpan(ctx, operation)
	e.logOperationStart(ctx, operation)
	start := time.Now()

	result, err := run(ctx)

	duration := time.Since(start)
	status := lending.StatusFromError(err)
	e.recordOperationMetrics(ctx, operation, status, duration)
	e.finishOperationSpan(span, status, duration, err)

	if err != nil {
		e.logOperationError(ctx, operation, err)
		var zero T

		return zero, err
	}

	e.logOperationSuccess(ctx, operation, duration)

	return result, nil
}
