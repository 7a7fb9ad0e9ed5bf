package sqlengine

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

const (
	// DatasetQueryDurationMetric tracks the duration of single dataset queries.
	DatasetQueryDurationMetric = "dataset_query_duration_seconds"

	// DatasetQueryRowsMetric tracks the number of rows a dataset query returned.
	DatasetQueryRowsMetric = "dataset_query_rows"

	// DatasetQueryErrorsMetric counts failed dataset queries.
	DatasetQueryErrorsMetric = "dataset_query_errors_total"

	// SpanNameQuery is the span name of single dataset queries.
	SpanNameQuery = "dataset.query"

	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgSQLExecuted            = "executed sql for: "

	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrEntity     = "entity"
	logAttrDialect    = "dialect"
	logAttrRowCount   = "row_count"
	logAttrDurationMS = "duration_ms"
	logAttrStatus     = "status"
)

func (ds Dataset) startQuerySpan(ctx context.Context, entity string) (context.Context, lending.SpanContext) {
	if ds.tracingCollector == nil {
		return ctx, nil
	}

	return ds.tracingCollector.StartSpan(ctx, SpanNameQuery, map[string]string{
		logAttrEntity:  entity,
		logAttrDialect: ds.dialectName,
	})
}

// recordQuery finishes the span, records metrics, and logs the executed SQL.
func (ds Dataset) recordQuery(
	ctx context.Context,
	span lending.SpanContext,
	entity string,
	sqlQuery string,
	rowCount int,
	duration time.Duration,
	err error,
) {

	status := lending.StatusFromError(err)
	labels := map[string]string{
		logAttrEntity: entity,
		logAttrStatus: status,
	}

	lending.RecordDuration(ctx, ds.metricsCollector, DatasetQueryDurationMetric, duration, labels)

	if err != nil {
		lending.IncrementCounter(ctx, ds.metricsCollector, DatasetQueryErrorsMetric, labels)
	} else {
		lending.RecordValue(ctx, ds.metricsCollector, DatasetQueryRowsMetric, float64(rowCount), labels)
		ds.logDebug(
			ctx,
			logMsgSQLExecuted+entity,
			logAttrDurationMS, lending.ToMilliseconds(duration),
			logAttrRowCount, rowCount,
			logAttrQuery, sqlQuery,
		)
	}

	if ds.tracingCollector != nil && span != nil {
		attrs := map[string]string{
			logAttrRowCount:   strconv.Itoa(rowCount),
			logAttrDurationMS: strconv.FormatFloat(lending.ToMilliseconds(duration), 'f', 3, 64),
		}

		if err != nil {
			attrs[logAttrError] = err.Error()
		}

		ds.tracingCollector.FinishSpan(span, status, attrs)
	}
}

func (ds Dataset) logDebug(ctx context.Context, msg string, args ...any) {
	if ds.contextualLogger != nil {
		ds.contextualLogger.DebugContext(ctx, msg, args...)
	} else if ds.logger != nil {
		ds.logger.Debug(msg, args...)
	}
}

func (ds Dataset) logWarn(ctx context.Context, msg string, args ...any) {
	if ds.contextualLogger != nil {
		ds.contextualLogger.WarnContext(ctx, msg, args...)
	} else if ds.logger != nil {
		ds.logger.Warn(msg, args...)
	}
}

func (ds Dataset) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if ds.contextualLogger != nil {
		ds.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	} else if ds.logger != nil {
		ds.logger.Error(msg, allArgs...)
	}
}
