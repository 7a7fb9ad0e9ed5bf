package benchmark

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

const (
	// RunDurationMetric tracks the wall-clock duration of a run, or of one pool size of a scaling sweep.
	RunDurationMetric = "benchmark_run_duration_seconds"

	// TaskFailuresMetric counts failed tasks.
	TaskFailuresMetric = "benchmark_task_failures_total"

	// HostCPUPercentMetric records the sampled host CPU utilization.
	HostCPUPercentMetric = "benchmark_host_cpu_percent"

	// HostMemoryPercentMetric records the sampled host memory utilization.
	HostMemoryPercentMetric = "benchmark_host_memory_percent"

	protocolMixedBatch   = "mixed_batch"
	protocolThroughput   = "throughput"
	protocolScalingCurve = "scaling_curve"

	logMsgRunStarted     = "benchmark run started"
	logMsgRunCompleted   = "benchmark run completed"
	logMsgSamplingFailed = "sampling host resources failed"

	logAttrProtocol   = "protocol"
	logAttrRunID      = "run_id"
	logAttrPoolSize   = "pool_size"
	logAttrOperation  = "operation"
	logAttrFailures   = "failures"
	logAttrDurationMS = "duration_ms"
	logAttrError      = "error"
)

func (s settings) recordRun(ctx context.Context, protocol string, poolSize int, elapsed time.Duration, outcomes []Outcome) {
	lending.RecordDuration(ctx, s.metricsCollector, RunDurationMetric, elapsed, map[string]string{
		logAttrProtocol: protocol,
		logAttrPoolSize: strconv.Itoa(poolSize),
	})

	for _, outcome := range outcomes {
		if !outcome.Failed() {
			continue
		}

		lending.IncrementCounter(ctx, s.metricsCollector, TaskFailuresMetric, map[string]string{
			logAttrProtocol:  protocol,
			logAttrOperation: outcome.Operation,
		})
	}
}

func (s settings) recordUsage(ctx context.Context, usage ResourceUsage) {
	labels := map[string]string{logAttrProtocol: protocolThroughput}

	lending.RecordValue(ctx, s.metricsCollector, HostCPUPercentMetric, usage.CPUPercent, labels)
	lending.RecordValue(ctx, s.metricsCollector, HostMemoryPercentMetric, usage.MemoryPercent, labels)
}

func (s settings) logRunStart(ctx context.Context, protocol string, runID uuid.UUID, poolSize int) {
	s.logInfo(ctx, logMsgRunStarted,
		logAttrProtocol, protocol,
		logAttrRunID, runID.String(),
		logAttrPoolSize, poolSize,
	)
}

func (s settings) logRunCompleted(
	ctx context.Context,
	protocol string,
	runID uuid.UUID,
	poolSize int,
	elapsed time.Duration,
	failures int,
) {

	s.logInfo(ctx, logMsgRunCompleted,
		logAttrProtocol, protocol,
		logAttrRunID, runID.String(),
		logAttrPoolSize, poolSize,
		logAttrDurationMS, toMilliseconds(elapsed),
		logAttrFailures, failures,
	)
}

func (s settings) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s settings) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func toMilliseconds(d time.Duration) float64 {
	return lending.ToMilliseconds(d)
}
