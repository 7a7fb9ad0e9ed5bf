package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lepinkainen/humanlog"

	"github.com/AntonStoeckl/lending-analytics-go/analytics"
	"github.com/AntonStoeckl/lending-analytics-go/benchmark"
	"github.com/AntonStoeckl/lending-analytics-go/config"
	"github.com/AntonStoeckl/lending-analytics-go/lending"
	"github.com/AntonStoeckl/lending-analytics-go/lending/oteladapters"
	"github.com/AntonStoeckl/lending-analytics-go/lending/sqlengine"
)

const (
	serviceName    = "lendingstats"
	serviceVersion = "dev"
	shutdownGrace  = 5 * time.Second
)

var (
	errUnknownOperation = errors.New("unknown operation")
	errUnknownLogFormat = errors.New("unknown log format")
)

// runtime carries everything a command needs: settings, logging, telemetry and the dataset.
type runtime struct {
	settings  config.Settings
	logger    lending.ContextualLogger
	metrics   lending.MetricsCollector
	tracing   lending.TracingCollector
	providers *config.ObservabilityProviders
	dataset   lending.Dataset
	closers   []func()
}

func newRuntime(ctx context.Context, configFile string, overrides map[string]any, otelMetrics bool) (*runtime, error) {
	settings, err := config.Load(configFile, overrides)
	if err != nil {
		return nil, err
	}

	handler, err := newLogHandler(stderr, settings.Log)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		settings: settings,
		logger:   oteladapters.NewSlogBridgeLoggerWithHandler(handler),
	}

	if otelMetrics {
		providers, providersErr := config.NewObservabilityProviders(ctx, serviceName, serviceVersion)
		if providersErr != nil {
			return nil, providersErr
		}

		providers.InstallGlobal()
		rt.providers = providers
		rt.metrics = oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(serviceName))
		rt.tracing = oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(serviceName))
	}

	rt.dataset, err = rt.openDataset(ctx)
	if err != nil {
		rt.close(ctx)
		return nil, err
	}

	return rt, nil
}

func newLogHandler(w io.Writer, settings config.LogSettings) (slog.Handler, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(settings.Level)); err != nil {
		return nil, err
	}

	switch strings.ToLower(settings.Format) {
	case "", "human":
		return humanlog.NewHandler(w, &humanlog.Options{Level: level}), nil
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownLogFormat, settings.Format)
	}
}

func (rt *runtime) openDataset(ctx context.Context) (lending.Dataset, error) {
	s := rt.settings

	switch s.Driver {
	case config.DriverSnapshot:
		snapshot, err := readSnapshotFile(s.SnapshotFile)
		if err != nil {
			return nil, err
		}

		return snapshot, nil

	case config.DriverPGX:
		pool, err := config.OpenPGXPool(ctx, s.DSN, s.Pool)
		if err != nil {
			return nil, err
		}

		rt.closers = append(rt.closers, pool.Close)

		return sqlengine.NewDatasetFromPGXPool(pool, rt.datasetOptions(sqlengine.DialectPostgres)...)

	case config.DriverPostgres:
		db, err := config.OpenSQLDB(ctx, s.DSN, s.Pool)
		if err != nil {
			return nil, err
		}

		rt.closers = append(rt.closers, func() { _ = db.Close() })

		return sqlengine.NewDatasetFromSQLDB(db, rt.datasetOptions(sqlengine.DialectPostgres)...)

	case config.DriverSQLX:
		db, err := config.OpenSQLX(ctx, s.DSN, s.Pool)
		if err != nil {
			return nil, err
		}

		rt.closers = append(rt.closers, func() { _ = db.Close() })

		return sqlengine.NewDatasetFromSQLX(db, rt.datasetOptions(sqlengine.DialectPostgres)...)

	case config.DriverSQLite:
		db, err := config.OpenSQLite(ctx, s.DSN, s.Pool)
		if err != nil {
			return nil, err
		}

		rt.closers = append(rt.closers, func() { _ = db.Close() })

		return sqlengine.NewDatasetFromSQLDB(db, rt.datasetOptions(sqlengine.DialectSQLite)...)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, s.Driver)
	}
}

func readSnapshotFile(path string) (*lending.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return lending.ReadSnapshotJSON(file)
}

func (rt *runtime) datasetOptions(dialect string) []sqlengine.Option {
	options := []sqlengine.Option{
		sqlengine.WithDialect(dialect),
		sqlengine.WithTablePrefix(rt.settings.TablePrefix),
		sqlengine.WithContextualLogger(rt.logger),
	}

	if rt.metrics != nil {
		options = append(options, sqlengine.WithMetrics(rt.metrics))
	}

	if rt.tracing != nil {
		options = append(options, sqlengine.WithTracing(rt.tracing))
	}

	return options
}

func (rt *runtime) engine() (*analytics.Engine, error) {
	options := []analytics.Option{analytics.WithContextualLogger(rt.logger)}

	if rt.metrics != nil {
		options = append(options, analytics.WithMetrics(rt.metrics))
	}

	if rt.tracing != nil {
		options = append(options, analytics.WithTracing(rt.tracing))
	}

	return analytics.NewEngine(rt.dataset, options...)
}

func (rt *runtime) benchmarkOptions() []benchmark.Option {
	b := rt.settings.Benchmark

	options := []benchmark.Option{
		benchmark.WithPoolSize(b.PoolSize),
		benchmark.WithIterations(b.Iterations),
		benchmark.WithAuthorID(b.AuthorID),
		benchmark.WithCategoryID(b.CategoryID),
		benchmark.WithTaskTimeout(b.TaskTimeout),
		benchmark.WithContextualLogger(rt.logger),
	}

	if rt.metrics != nil {
		options = append(options, benchmark.WithMetrics(rt.metrics))
	}

	return options
}

// close prints the metrics summary when telemetry is enabled and releases all resources.
func (rt *runtime) close(ctx context.Context) {
	if rt.providers != nil {
		if resourceMetrics, err := rt.providers.Collect(ctx); err == nil {
			_ = writeJSON(stderr, summarizeMetrics(resourceMetrics))
		} else {
			rt.logger.WarnContext(ctx, "collecting metrics failed", "error", err.Error())
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		_ = rt.providers.Shutdown(shutdownCtx)
		cancel()
	}

	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}

	rt.closers = nil
}
