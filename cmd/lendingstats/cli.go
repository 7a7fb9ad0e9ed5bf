package main

import (
	"context"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/analytics"
	"github.com/AntonStoeckl/lending-analytics-go/benchmark"
)

// CLI is the complete command structure of lendingstats.
type CLI struct {
	Globals `embed:""`

	Query      QueryCmd      `cmd:"" help:"Run one aggregation and print its result."`
	Batch      BatchCmd      `cmd:"" help:"Run the six aggregations once, concurrently on one pool."`
	Throughput ThroughputCmd `cmd:"" help:"Submit the monthly trends aggregation repeatedly and sample host resources."`
	Scaling    ScalingCmd    `cmd:"" help:"Measure the reader activity aggregation for a sequence of pool sizes."`
}

// Globals are flags shared by all commands. Empty values fall back to the config file and environment.
type Globals struct {
	Config       string `help:"Path to a config file, defaults to ./lendingstats.yaml when present."`
	Driver       string `help:"Dataset driver: pgx, postgres, sqlx, sqlite or snapshot."`
	DSN          string `name:"dsn" help:"Database connection string."`
	SnapshotFile string `help:"Path to a JSON snapshot for the snapshot driver."`
	TablePrefix  string `help:"Prefix of the lending tables."`
	LogLevel     string `help:"Log level: debug, info, warn or error."`
	LogFormat    string `help:"Log format: human or json."`
	OTelMetrics  bool   `name:"otel-metrics" help:"Collect OpenTelemetry metrics in-process and print them at exit."`
}

func (g *Globals) overrides() map[string]any {
	overrides := make(map[string]any)

	setIfNotEmpty(overrides, "driver", g.Driver)
	setIfNotEmpty(overrides, "dsn", g.DSN)
	setIfNotEmpty(overrides, "snapshot_file", g.SnapshotFile)
	setIfNotEmpty(overrides, "table_prefix", g.TablePrefix)
	setIfNotEmpty(overrides, "log.level", g.LogLevel)
	setIfNotEmpty(overrides, "log.format", g.LogFormat)

	return overrides
}

func setIfNotEmpty(overrides map[string]any, key, value string) {
	if value != "" {
		overrides[key] = value
	}
}

// QueryCmd runs a single aggregation, post-filters are applied to the result only.
type QueryCmd struct {
	Operation  string `arg:"" enum:"monthly_borrow_trends_by_category,reader_activity_duration,borrow_counts_by_gender,top_readers_for_author,reader_ranking_by_category,average_borrows_per_reader_in_library,borrow_date_statistics,publication_years_by_category" help:"Aggregation to run: ${enum}."` //nolint:lll
	AuthorID   int64  `help:"Author of top_readers_for_author." default:"1"`
	CategoryID int64  `help:"Category of reader_ranking_by_category." default:"1"`

	Gender      []string `help:"Keep only these genders of borrow_counts_by_gender (male, female)." sep:","`
	MaxDuration int      `help:"Keep readers with an activity of at most this many days, negative disables." default:"-1"`
	MinBooks    int      `help:"Keep readers with at least this many distinct books."`
	Library     string   `help:"Keep only the library with this name."`
	MinAverage  float64  `help:"Keep libraries with at least this average, negative disables." default:"-1"`
	MaxAverage  float64  `help:"Keep libraries with at most this average, negative disables." default:"-1"`
	Month       string   `help:"Keep only the trends of this month (YYYY-MM)."`
	Sort        string   `help:"Order reader_ranking_by_category by ratio." enum:"asc,desc,none" default:"none"`
}

func (c *QueryCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := newRuntime(ctx, g.Config, g.overrides(), g.OTelMetrics)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	engine, err := rt.engine()
	if err != nil {
		return err
	}

	result, err := c.execute(ctx, engine)
	if err != nil {
		return err
	}

	return writeJSON(stdout, result)
}

//nolint:cyclop
func (c *QueryCmd) execute(ctx context.Context, engine *analytics.Engine) (any, error) {
	filters := c.postFilters()

	switch c.Operation {
	case analytics.OperationMonthlyBorrowTrends:
		trends, err := engine.MonthlyBorrowTrendsByCategory(ctx)
		if err != nil {
			return nil, err
		}

		return filterMonthlyTrends(trends, filters.month)

	case analytics.OperationReaderActivityDuration:
		activity, err := engine.ReaderActivityDuration(ctx)
		if err != nil {
			return nil, err
		}

		return filterReaderActivity(activity, filters.maxDuration), nil

	case analytics.OperationBorrowCountsByGender:
		counts, err := engine.BorrowCountsByGender(ctx)
		if err != nil {
			return nil, err
		}

		return filterGenderCounts(counts, filters.genders)

	case analytics.OperationTopReadersForAuthor:
		readers, err := engine.TopReadersForAuthor(ctx, c.AuthorID)
		if err != nil {
			return nil, err
		}

		return filterTopReaders(readers, filters.minBooks), nil

	case analytics.OperationReaderRankingByCategory:
		ranking, err := engine.ReaderRankingByCategory(ctx, c.CategoryID)
		if err != nil {
			return nil, err
		}

		return sortCategoryRanking(filterCategoryRanking(ranking, filters.minBooks), filters.sortOrder), nil

	case analytics.OperationAverageBorrowsPerLibrary:
		averages, err := engine.AverageBorrowsPerReaderInLibrary(ctx)
		if err != nil {
			return nil, err
		}

		return filterLibraryAverages(averages, filters.library, filters.minAverage, filters.maxAverage), nil

	case analytics.OperationBorrowDateStatistics:
		return engine.BorrowDateStatistics(ctx)

	case analytics.OperationPublicationYearsByCategory:
		return engine.PublicationYearsByCategory(ctx)

	default:
		return nil, errUnknownOperation
	}
}

func (c *QueryCmd) postFilters() postFilters {
	filters := postFilters{
		genders:   c.Gender,
		minBooks:  c.MinBooks,
		library:   c.Library,
		month:     c.Month,
		sortOrder: c.Sort,
	}

	if c.MaxDuration >= 0 {
		maxDuration := c.MaxDuration
		filters.maxDuration = &maxDuration
	}

	if c.MinAverage >= 0 {
		minAverage := c.MinAverage
		filters.minAverage = &minAverage
	}

	if c.MaxAverage >= 0 {
		maxAverage := c.MaxAverage
		filters.maxAverage = &maxAverage
	}

	return filters
}

// BatchCmd runs the mixed batch protocol.
type BatchCmd struct {
	PoolSize    int           `help:"Number of workers, defaults to benchmark.pool_size."`
	AuthorID    int64         `help:"Author of the top readers task, defaults to benchmark.author_id."`
	CategoryID  int64         `help:"Category of the reader ranking task, defaults to benchmark.category_id."`
	TaskTimeout time.Duration `help:"Timeout of each task, defaults to benchmark.task_timeout (0 disables)."`
}

func (c *BatchCmd) Run(ctx context.Context, g *Globals) error {
	overrides := g.overrides()
	setIfPositive(overrides, "benchmark.pool_size", c.PoolSize)
	setIfPositive(overrides, "benchmark.author_id", c.AuthorID)
	setIfPositive(overrides, "benchmark.category_id", c.CategoryID)
	setIfPositive(overrides, "benchmark.task_timeout", c.TaskTimeout)

	return runBenchmark(ctx, g, overrides, func(rt *runtime, engine *analytics.Engine) (any, error) {
		return benchmark.RunMixedBatch(ctx, engine, rt.benchmarkOptions()...)
	})
}

// ThroughputCmd runs the throughput protocol.
type ThroughputCmd struct {
	PoolSize   int `help:"Number of workers, defaults to benchmark.pool_size."`
	Iterations int `help:"Number of submissions, defaults to benchmark.iterations."`
}

func (c *ThroughputCmd) Run(ctx context.Context, g *Globals) error {
	overrides := g.overrides()
	setIfPositive(overrides, "benchmark.pool_size", c.PoolSize)
	setIfPositive(overrides, "benchmark.iterations", c.Iterations)

	return runBenchmark(ctx, g, overrides, func(rt *runtime, engine *analytics.Engine) (any, error) {
		return benchmark.RunThroughputSweep(ctx, engine, rt.benchmarkOptions()...)
	})
}

// ScalingCmd runs the scaling-curve protocol.
type ScalingCmd struct {
	PoolSizes []int `help:"Pool sizes in the order to measure, defaults to benchmark.pool_sizes." sep:","`
}

func (c *ScalingCmd) Run(ctx context.Context, g *Globals) error {
	overrides := g.overrides()
	if len(c.PoolSizes) > 0 {
		overrides["benchmark.pool_sizes"] = c.PoolSizes
	}

	return runBenchmark(ctx, g, overrides, func(rt *runtime, engine *analytics.Engine) (any, error) {
		return benchmark.RunScalingCurveSweep(ctx, engine,
			append(rt.benchmarkOptions(), benchmark.WithPoolSizes(rt.settings.Benchmark.PoolSizes...))...)
	})
}

func runBenchmark(
	ctx context.Context,
	g *Globals,
	overrides map[string]any,
	run func(rt *runtime, engine *analytics.Engine) (any, error),
) error {

	rt, err := newRuntime(ctx, g.Config, overrides, g.OTelMetrics)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	engine, err := rt.engine()
	if err != nil {
		return err
	}

	report, err := run(rt, engine)
	if err != nil {
		return err
	}

	return writeJSON(stdout, report)
}

func setIfPositive[T int | int64 | time.Duration](overrides map[string]any, key string, value T) {
	if value > 0 {
		overrides[key] = value
	}
}
