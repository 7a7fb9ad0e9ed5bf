package benchmark_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-analytics-go/analytics"
	"github.com/AntonStoeckl/lending-analytics-go/benchmark"
	"github.com/AntonStoeckl/lending-analytics-go/lending"
	"github.com/AntonStoeckl/lending-analytics-go/testutil/fixtures"
	"github.com/AntonStoeckl/lending-analytics-go/testutil/helper"
)

type fixedSampler struct {
	usage benchmark.ResourceUsage
	err   error
}

func (s fixedSampler) Sample(context.Context) (benchmark.ResourceUsage, error) {
	return s.usage, s.err
}

// misbehavingEngine embeds a real engine and overrides single operations.
type misbehavingEngine struct {
	*analytics.Engine
	panicOnGender bool
	blockOnTrends bool
}

func (e misbehavingEngine) BorrowCountsByGender(ctx context.Context) (analytics.GenderBorrowCounts, error) {
	if e.panicOnGender {
		panic("gender bucket exploded")
	}

	return e.Engine.BorrowCountsByGender(ctx)
}

func (e misbehavingEngine) MonthlyBorrowTrendsByCategory(ctx context.Context) ([]analytics.MonthlyCategoryTrend, error) {
	if e.blockOnTrends {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	return e.Engine.MonthlyBorrowTrendsByCategory(ctx)
}

func givenEngine(t *testing.T) *analytics.Engine {
	t.Helper()

	cfg := fixtures.DefaultGeneratorConfig()
	cfg.Readers = 50
	cfg.Books = 60
	cfg.Borrows = 600

	snapshot, err := lending.NewSnapshot(fixtures.Generate(cfg))
	require.NoError(t, err)

	engine, err := analytics.NewEngine(snapshot)
	require.NoError(t, err)

	return engine
}

func Test_RunMixedBatch_ReturnsEveryOperation(t *testing.T) {
	// arrange
	engine := givenEngine(t)

	// act
	report, err := benchmark.RunMixedBatch(context.Background(), engine)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 8, report.PoolSize)
	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.Positive(t, report.Elapsed)
	assert.Zero(t, report.Failures())
	require.Len(t, report.Outcomes, 6)

	for _, operation := range analytics.CoreOperations() {
		outcome, ok := report.Outcomes[operation]
		require.True(t, ok, operation)
		assert.Equal(t, operation, outcome.Operation)
		assert.False(t, outcome.Failed(), outcome.ErrorString())
	}

	expectedGenders, err := engine.BorrowCountsByGender(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expectedGenders, report.Outcomes[analytics.OperationBorrowCountsByGender].Value)

	expectedReaders, err := engine.TopReadersForAuthor(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, expectedReaders, report.Outcomes[analytics.OperationTopReadersForAuthor].Value)
}

func Test_RunMixedBatch_IsolatesAFailingOperation(t *testing.T) {
	// arrange
	engine := givenEngine(t)
	metrics := helper.NewMetricsCollectorSpy()

	// act
	report, err := benchmark.RunMixedBatch(
		context.Background(),
		engine,
		benchmark.WithAuthorID(0),
		benchmark.WithPoolSize(3),
		benchmark.WithMetrics(metrics),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, report.PoolSize)
	assert.Equal(t, 1, report.Failures())

	failed := report.Outcomes[analytics.OperationTopReadersForAuthor]
	assert.True(t, failed.Failed())
	assert.ErrorIs(t, failed.Err, lending.ErrInvalidFilterID)
	assert.Contains(t, failed.ErrorString(), analytics.OperationTopReadersForAuthor)

	for _, operation := range analytics.CoreOperations() {
		if operation != analytics.OperationTopReadersForAuthor {
			assert.False(t, report.Outcomes[operation].Failed(), operation)
		}
	}

	expectedTrends, err := engine.MonthlyBorrowTrendsByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expectedTrends, report.Outcomes[analytics.OperationMonthlyBorrowTrends].Value)

	assert.Equal(t, 1, metrics.HasCounterRecordForMetric(benchmark.TaskFailuresMetric).
		WithLabel("operation", analytics.OperationTopReadersForAuthor).
		Count())
	assert.True(t, metrics.HasDurationRecordForMetric(benchmark.RunDurationMetric).
		WithLabel("protocol", "mixed_batch").
		WithLabel("pool_size", "3").
		Assert())
}

func Test_RunMixedBatch_RecoversPanickingOperations(t *testing.T) {
	// arrange
	engine := misbehavingEngine{Engine: givenEngine(t), panicOnGender: true}

	// act
	report, err := benchmark.RunMixedBatch(context.Background(), engine)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures())
	assert.ErrorIs(t, report.Outcomes[analytics.OperationBorrowCountsByGender].Err, benchmark.ErrTaskPanicked)
}

func Test_RunMixedBatch_TaskTimeout(t *testing.T) {
	// arrange
	engine := misbehavingEngine{Engine: givenEngine(t), blockOnTrends: true}

	// act
	report, err := benchmark.RunMixedBatch(context.Background(), engine, benchmark.WithTaskTimeout(200*time.Millisecond))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures())
	assert.ErrorIs(t, report.Outcomes[analytics.OperationMonthlyBorrowTrends].Err, context.DeadlineExceeded)
}

func Test_RunMixedBatch_Logs(t *testing.T) {
	// arrange
	logSpy := helper.NewLogHandlerSpy(false)

	// act
	_, err := benchmark.RunMixedBatch(context.Background(), givenEngine(t), benchmark.WithLogger(slog.New(logSpy)))

	// assert
	require.NoError(t, err)
	assert.True(t, logSpy.HasLog(slog.LevelInfo, "benchmark run started"))
	assert.True(t, logSpy.HasLogWithAttr("benchmark run completed", "run_id"))
	assert.True(t, logSpy.HasLogWithAttr("benchmark run completed", "duration_ms"))
}

func Test_Runs_RejectInvalidInput(t *testing.T) {
	engine := givenEngine(t)
	ctx := context.Background()

	_, nilErr := benchmark.RunMixedBatch(ctx, nil)
	_, poolErr := benchmark.RunMixedBatch(ctx, engine, benchmark.WithPoolSize(0))
	_, iterationsErr := benchmark.RunThroughputSweep(ctx, engine, benchmark.WithIterations(0))
	_, samplerErr := benchmark.RunThroughputSweep(ctx, engine, benchmark.WithResourceSampler(nil))
	_, timeoutErr := benchmark.RunThroughputSweep(ctx, engine, benchmark.WithTaskTimeout(-time.Second))
	_, emptySizesErr := benchmark.RunScalingCurveSweep(ctx, engine, benchmark.WithPoolSizes())
	_, badSizesErr := benchmark.RunScalingCurveSweep(ctx, engine, benchmark.WithPoolSizes(1, 0))

	assert.ErrorIs(t, nilErr, benchmark.ErrNilAnalytics)
	assert.ErrorIs(t, poolErr, benchmark.ErrInvalidPoolSize)
	assert.ErrorIs(t, iterationsErr, benchmark.ErrInvalidIterations)
	assert.ErrorIs(t, samplerErr, benchmark.ErrNilResourceSampler)
	assert.ErrorIs(t, timeoutErr, benchmark.ErrInvalidTaskTimeout)
	assert.ErrorIs(t, emptySizesErr, benchmark.ErrInvalidPoolSize)
	assert.ErrorIs(t, badSizesErr, benchmark.ErrInvalidPoolSize)
}

func Test_RunThroughputSweep(t *testing.T) {
	// arrange
	engine := givenEngine(t)
	metrics := helper.NewMetricsCollectorSpy()
	sampler := fixedSampler{usage: benchmark.ResourceUsage{CPUPercent: 37.5, MemoryPercent: 61.25}}

	// act
	report, err := benchmark.RunThroughputSweep(
		context.Background(),
		engine,
		benchmark.WithIterations(25),
		benchmark.WithPoolSize(4),
		benchmark.WithResourceSampler(sampler),
		benchmark.WithMetrics(metrics),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 25, report.Iterations)
	assert.Equal(t, 4, report.PoolSize)
	assert.InDelta(t, 37.5, report.CPUPercent, 1e-9)
	assert.InDelta(t, 61.25, report.MemoryPercent, 1e-9)
	assert.Zero(t, report.Failures())
	require.Len(t, report.Results, 25)

	expected, err := engine.MonthlyBorrowTrendsByCategory(context.Background())
	require.NoError(t, err)

	for _, outcome := range report.Results {
		assert.Equal(t, analytics.OperationMonthlyBorrowTrends, outcome.Operation)
		assert.Equal(t, expected, outcome.Value)
	}

	assert.True(t, metrics.HasValueRecordForMetric(benchmark.HostCPUPercentMetric).Assert())
	assert.True(t, metrics.HasValueRecordForMetric(benchmark.HostMemoryPercentMetric).Assert())
}

func Test_RunThroughputSweep_DefaultsTo200Iterations(t *testing.T) {
	// act
	report, err := benchmark.RunThroughputSweep(
		context.Background(),
		givenEngine(t),
		benchmark.WithResourceSampler(fixedSampler{}),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 200, report.Iterations)
	assert.Len(t, report.Results, 200)
}

func Test_RunThroughputSweep_SamplingFailureKeepsTheResults(t *testing.T) {
	// arrange
	logger := helper.NewContextualLoggerSpy()
	sampler := fixedSampler{err: errors.Join(benchmark.ErrSamplingFailed, errors.New("no /proc"))}

	// act
	report, err := benchmark.RunThroughputSweep(
		context.Background(),
		givenEngine(t),
		benchmark.WithIterations(3),
		benchmark.WithResourceSampler(sampler),
		benchmark.WithContextualLogger(logger),
	)

	// assert
	require.NoError(t, err)
	assert.Len(t, report.Results, 3)
	assert.Zero(t, report.CPUPercent)
	assert.Zero(t, report.MemoryPercent)
	assert.True(t, logger.HasEntry("warn", "sampling host resources failed"))

	for _, entry := range logger.GetEntries() {
		if entry.Message == "sampling host resources failed" {
			assert.Contains(t, entry.Args, report.RunID.String())
		}
	}
}

func Test_RunScalingCurveSweep_ReportsEveryPoolSizeInOrder(t *testing.T) {
	// act
	curve, err := benchmark.RunScalingCurveSweep(context.Background(), givenEngine(t))

	// assert
	require.NoError(t, err)
	require.Len(t, curve.Points, 6)

	for i, poolSize := range benchmark.DefaultScalingPoolSizes() {
		assert.Equal(t, poolSize, curve.Points[i].PoolSize)
		assert.Positive(t, curve.Points[i].Elapsed)
		assert.Zero(t, curve.Points[i].Failures)
	}
}

func Test_RunScalingCurveSweep_KeepsTheRequestedOrder(t *testing.T) {
	// act
	curve, err := benchmark.RunScalingCurveSweep(context.Background(), givenEngine(t), benchmark.WithPoolSizes(4, 1, 2))

	// assert
	require.NoError(t, err)
	require.Len(t, curve.Points, 3)
	assert.Equal(t, 4, curve.Points[0].PoolSize)
	assert.Equal(t, 1, curve.Points[1].PoolSize)
	assert.Equal(t, 2, curve.Points[2].PoolSize)
}

func Test_HostSampler_Sample(t *testing.T) {
	usage, err := benchmark.HostSampler{Interval: 10 * time.Millisecond}.Sample(context.Background())
	if err != nil {
		t.Skipf("host resources are not readable here: %v", err)
	}

	assert.GreaterOrEqual(t, usage.CPUPercent, 0.0)
	assert.LessOrEqual(t, usage.CPUPercent, 100.0)
	assert.Greater(t, usage.MemoryPercent, 0.0)
	assert.LessOrEqual(t, usage.MemoryPercent, 100.0)
}
