package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

const (
	// OperationDurationMetric tracks the execution duration of analytics operations.
	OperationDurationMetric = "analytics_operation_duration_seconds"

	// OperationCallsMetric counts analytics operation calls.
	OperationCallsMetric = "analytics_operation_calls_total"

	// SpanNameOperation is the tracing span name of analytics operations.
	SpanNameOperation = "analytics.operation"

	// LogMsgOperationStarted is logged when an operation begins.
	LogMsgOperationStarted = "analytics operation started"

	// LogMsgOperationCompleted is logged when an operation succeeds.
	LogMsgOperationCompleted = "analytics operation completed"

	// LogMsgOperationFailed is logged when an operation fails.
	LogMsgOperationFailed = "analytics operation failed"

	// LogAttrOperation identifies the operation in logs, metric labels, and span attributes.
	LogAttrOperation = "operation"

	// LogAttrStatus indicates the operation status.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrError contains error details.
	LogAttrError = "error"
)

// BuildOperationLabels creates the standard metric labels for an analytics operation.
func BuildOperationLabels(operation, status string) map[string]string {
	return map[string]string{
		LogAttrOperation: operation,
		LogAttrStatus:    status,
	}
}

func (e *Engine) recordOperationMetrics(ctx context.Context, operation, status string, duration time.Duration) {
	labels := BuildOperationLabels(operation, status)

	lending.RecordDuration(ctx, e.metricsCollector, OperationDurationMetric, duration, labels)
	lending.IncrementCounter(ctx, e.metricsCollector, OperationCallsMetric, labels)
}

func (e *Engine) startOperationSpan(ctx context.Context, operation string) (context.Context, lending.SpanContext) {
	if e.tracingCollector == nil {
		return ctx, nil
	}

	return e.tracingCollector.StartSpan(ctx, SpanNameOperation, map[string]string{LogAttrOperation: operation})
}

func (e *Engine) finishOperationSpan(span lending.SpanContext, status string, duration time.Duration, err error) {
	if e.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", lending.ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	e.tracingCollector.FinishSpan(span, status, attrs)
}

func (e *Engine) logOperationStart(ctx context.Context, operation string) {
	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, LogMsgOperationStarted, LogAttrOperation, operation)
	} else if e.logger != nil {
		e.logger.Debug(LogMsgOperationStarted, LogAttrOperation, operation)
	}
}

func (e *Engine) logOperationSuccess(ctx context.Context, operation string, duration time.Duration) {
	args := []any{
		LogAttrOperation, operation,
		LogAttrDurationMS, lending.ToMilliseconds(duration),
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, LogMsgOperationCompleted, args...)
	} else if e.logger != nil {
		e.logger.Info(LogMsgOperationCompleted, args...)
	}
}

func (e *Engine) logOperationError(ctx context.Context, operation string, err error) {
	args := []any{
		LogAttrOperation, operation,
		LogAttrError, err.Error(),
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, LogMsgOperationFailed, args...)
	} else if e.logger != nil {
		e.logger.Error(LogMsgOperationFailed, args...)
	}
}
