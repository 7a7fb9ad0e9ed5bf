package benchmark

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-analytics-go/analytics"
)

// Analytics is the part of *analytics.Engine the harness runs.
type Analytics interface {
	MonthlyBorrowTrendsByCategory(ctx context.Context) ([]analytics.MonthlyCategoryTrend, error)
	ReaderActivityDuration(ctx context.Context) ([]analytics.ReaderActivity, error)
	BorrowCountsByGender(ctx context.Context) (analytics.GenderBorrowCounts, error)
	TopReadersForAuthor(ctx context.Context, authorID int64) ([]analytics.AuthorReaderCount, error)
	ReaderRankingByCategory(ctx context.Context, categoryID int64) ([]analytics.CategoryReaderRank, error)
	AverageBorrowsPerReaderInLibrary(ctx context.Context) ([]analytics.LibraryBorrowAverage, error)
}

var _ Analytics = (*analytics.Engine)(nil)

// BatchReport is the result of RunMixedBatch. Outcomes are keyed by operation name.
type BatchReport struct {
	RunID    uuid.UUID          `json:"run_id"`
	PoolSize int                `json:"pool_size"`
	Elapsed  time.Duration      `json:"elapsed_ns"`
	Outcomes map[string]Outcome `json:"outcomes"`
}

// Failures returns the number of failed operations.
func (r BatchReport) Failures() int {
	return countFailures(outcomesOf(r.Outcomes))
}

// ThroughputReport is the result of RunThroughputSweep. Results are in submission order.
type ThroughputReport struct {
	RunID         uuid.UUID     `json:"run_id"`
	PoolSize      int           `json:"pool_size"`
	Iterations    int           `json:"iterations"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	CPUPercent    float64       `json:"cpu_percent"`
	MemoryPercent float64       `json:"memory_percent"`
	Results       []Outcome     `json:"results"`
}

// Failures returns the number of failed iterations.
func (r ThroughputReport) Failures() int {
	return countFailures(r.Results)
}

// ScalingPoint is the elapsed time of one pool size of a scaling-curve sweep.
type ScalingPoint struct {
	PoolSize int           `json:"pool_size"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Failures int           `json:"failures"`
}

// ScalingCurve is the result of RunScalingCurveSweep, Points follow the order of the requested pool sizes.
type ScalingCurve struct {
	RunID  uuid.UUID      `json:"run_id"`
	Points []ScalingPoint `json:"points"`
}

// RunMixedBatch runs each of the six aggregations once, concurrently on one pool.
// A failing operation is reported in its Outcome while all others complete normally.
func RunMixedBatch(ctx context.Context, engine Analytics, options ...Option) (BatchReport, error) {
	if engine == nil {
		return BatchReport{}, ErrNilAnalytics
	}

	s, err := newSettings(options)
	if err != nil {
		return BatchReport{}, err
	}

	tasks := mixedBatchTasks(engine, s.authorID, s.categoryID)
	report := BatchReport{RunID: uuid.New(), PoolSize: s.poolSize, Outcomes: make(map[string]Outcome, len(tasks))}
	s.logRunStart(ctx, protocolMixedBatch, report.RunID, s.poolSize)

	start := time.Now()

	pool, err := NewPool(s.poolSize)
	if err != nil {
		return BatchReport{}, err
	}

	futures := make(map[string]*Future, len(tasks))
	for _, operation := range analytics.CoreOperations() {
		futures[operation] = pool.Submit(ctx, operation, s.withTimeout(tasks[operation]))
	}

	for operation, future := range futures {
		report.Outcomes[operation] = future.Await()
	}

	pool.Close()
	report.Elapsed = time.Since(start)

	s.recordRun(ctx, protocolMixedBatch, report.PoolSize, report.Elapsed, outcomesOf(report.Outcomes))
	s.logRunCompleted(ctx, protocolMixedBatch, report.RunID, report.PoolSize, report.Elapsed, report.Failures())

	return report, nil
}

// RunThroughputSweep submits the monthly trends aggregation the configured number of times to one pool.
// Host CPU and memory usage are sampled after the timed window. A failed sample is logged and
// leaves both values at zero.
func RunThroughputSweep(ctx context.Context, engine Analytics, options ...Option) (ThroughputReport, error) {
	if engine == nil {
		return ThroughputReport{}, ErrNilAnalytics
	}

	s, err := newSettings(options)
	if err != nil {
		return ThroughputReport{}, err
	}

	task := s.withTimeout(func(ctx context.Context) (any, error) {
		return engine.MonthlyBorrowTrendsByCategory(ctx)
	})

	report := ThroughputReport{RunID: uuid.New(), PoolSize: s.poolSize, Iterations: s.iterations}
	s.logRunStart(ctx, protocolThroughput, report.RunID, s.poolSize)

	start := time.Now()

	report.Results, err = runRepeated(ctx, s.poolSize, s.iterations, analytics.OperationMonthlyBorrowTrends, task)
	if err != nil {
		return ThroughputReport{}, err
	}

	report.Elapsed = time.Since(start)

	usage, sampleErr := s.sampler.Sample(ctx)
	if sampleErr != nil {
		s.logWarn(ctx, logMsgSamplingFailed, logAttrRunID, report.RunID.String(), logAttrError, sampleErr.Error())
	} else {
		report.CPUPercent = usage.CPUPercent
		report.MemoryPercent = usage.MemoryPercent
		s.recordUsage(ctx, usage)
	}

	s.recordRun(ctx, protocolThroughput, report.PoolSize, report.Elapsed, report.Results)
	s.logRunCompleted(ctx, protocolThroughput, report.RunID, report.PoolSize, report.Elapsed, report.Failures())

	return report, nil
}

// RunScalingCurveSweep repeats the reader activity aggregation once per worker for every configured
// pool size, one fresh pool per size, and records the elapsed time of each.
func RunScalingCurveSweep(ctx context.Context, engine Analytics, options ...Option) (ScalingCurve, error) {
	if engine == nil {
		return ScalingCurve{}, ErrNilAnalytics
	}

	s, err := newSettings(options)
	if err != nil {
		return ScalingCurve{}, err
	}

	task := s.withTimeout(func(ctx context.Context) (any, error) {
		return engine.ReaderActivityDuration(ctx)
	})

	curve := ScalingCurve{RunID: uuid.New(), Points: make([]ScalingPoint, 0, len(s.poolSizes))}

	for _, poolSize := range s.poolSizes {
		s.logRunStart(ctx, protocolScalingCurve, curve.RunID, poolSize)

		start := time.Now()

		outcomes, runErr := runRepeated(ctx, poolSize, poolSize, analytics.OperationReaderActivityDuration, task)
		if runErr != nil {
			return ScalingCurve{}, runErr
		}

		point := ScalingPoint{PoolSize: poolSize, Elapsed: time.Since(start), Failures: countFailures(outcomes)}
		curve.Points = append(curve.Points, point)

		s.recordRun(ctx, protocolScalingCurve, poolSize, point.Elapsed, outcomes)
		s.logRunCompleted(ctx, protocolScalingCurve, curve.RunID, poolSize, point.Elapsed, point.Failures)
	}

	return curve, nil
}

func mixedBatchTasks(engine Analytics, authorID, categoryID int64) map[string]Task {
	return map[string]Task{
		analytics.OperationMonthlyBorrowTrends: func(ctx context.Context) (any, error) {
			return engine.MonthlyBorrowTrendsByCategory(ctx)
		},
		analytics.OperationReaderActivityDuration: func(ctx context.Context) (any, error) {
			return engine.ReaderActivityDuration(ctx)
		},
		analytics.OperationBorrowCountsByGender: func(ctx context.Context) (any, error) {
			return engine.BorrowCountsByGender(ctx)
		},
		analytics.OperationTopReadersForAuthor: func(ctx context.Context) (any, error) {
			return engine.TopReadersForAuthor(ctx, authorID)
		},
		analytics.OperationReaderRankingByCategory: func(ctx context.Context) (any, error) {
			return engine.ReaderRankingByCategory(ctx, categoryID)
		},
		analytics.OperationAverageBorrowsPerLibrary: func(ctx context.Context) (any, error) {
			return engine.AverageBorrowsPerReaderInLibrary(ctx)
		},
	}
}

// runRepeated submits the task count times to a fresh pool and returns the outcomes in submission order.
func runRepeated(ctx context.Context, poolSize, count int, operation string, task Task) ([]Outcome, error) {
	pool, err := NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	futures := make([]*Future, 0, count)
	for range count {
		futures = append(futures, pool.Submit(ctx, operation, task))
	}

	outcomes := make([]Outcome, 0, count)
	for _, future := range futures {
		outcomes = append(outcomes, future.Await())
	}

	pool.Close()

	return outcomes, nil
}

func (s settings) withTimeout(task Task) Task {
	if s.taskTimeout == 0 {
		return task
	}

	return func(ctx context.Context) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
		defer cancel()

		return task(ctx)
	}
}

func countFailures(outcomes []Outcome) int {
	failures := 0
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failures++
		}
	}

	return failures
}

func outcomesOf(byOperation map[string]Outcome) []Outcome {
	outcomes := make([]Outcome, 0, len(byOperation))
	for _, operation := range analytics.CoreOperations() {
		if outcome, ok := byOperation[operation]; ok {
			outcomes = append(outcomes, outcome)
		}
	}

	return outcomes
}
