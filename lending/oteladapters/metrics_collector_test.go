package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/lending-analytics-go/analytics"
	"github.com/AntonStoeckl/lending-analytics-go/lending/oteladapters"
)

func givenCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// arrange
	collector, reader := givenCollector()
	labels := map[string]string{"operation": analytics.OperationBorrowCountsByGender, "status": "success"}

	// act
	collector.RecordDuration(analytics.OperationDurationMetric, 150*time.Millisecond, labels)

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), analytics.OperationDurationMetric)
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("operation", analytics.OperationBorrowCountsByGender),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	collector, reader := givenCollector()
	labels := map[string]string{"operation": analytics.OperationTopReadersForAuthor, "status": "error"}

	// act
	collector.IncrementCounter(analytics.OperationCallsMetric, labels)
	collector.IncrementCounter(analytics.OperationCallsMetric, labels)
	collector.IncrementCounterContext(context.Background(), analytics.OperationCallsMetric, labels)

	// assert
	counter := findCounterMetric(t, collect(t, reader), analytics.OperationCallsMetric)
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue_LastValueWins(t *testing.T) {
	// arrange
	collector, reader := givenCollector()

	// act
	collector.RecordValue("benchmark_host_cpu_percent", 12.5, nil)
	collector.RecordValueContext(context.Background(), "benchmark_host_cpu_percent", 42.5, nil)

	// assert
	gauge := findGaugeMetric(t, collect(t, reader), "benchmark_host_cpu_percent")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 42.5, gauge.DataPoints[0].Value, 1e-9)
}

func Test_MetricsCollector_NilMeterDropsMeasurements(t *testing.T) {
	collector := oteladapters.NewMetricsCollector(nil)

	assert.NotPanics(t, func() {
		collector.RecordDuration("d", time.Millisecond, nil)
		collector.IncrementCounter("c", nil)
		collector.RecordValue("v", 1, nil)
	})
}

func Test_MetricsCollector_InstrumentCreationErrors(t *testing.T) {
	// arrange
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	collector := oteladapters.NewMetricsCollector(&failingMeter{Meter: provider.Meter("test")})

	// act
	assert.NotPanics(t, func() {
		collector.RecordDuration("broken", time.Millisecond, nil)
		collector.IncrementCounter("broken", nil)
		collector.RecordValue("broken", 1, nil)
		collector.IncrementCounter("working", nil)
	})

	// assert
	resourceMetrics := collect(t, reader)
	assert.NotNil(t, findCounterMetric(t, resourceMetrics, "working"))
}

func Test_MetricsCollector_ConcurrentUse(t *testing.T) {
	// arrange
	collector, reader := givenCollector()

	// act
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("concurrent_total", nil)
			collector.RecordDuration("concurrent_seconds", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	// assert
	resourceMetrics := collect(t, reader)
	assert.Equal(t, int64(32), findCounterMetric(t, resourceMetrics, "concurrent_total").DataPoints[0].Value)
	assert.Equal(t, uint64(32), findHistogramMetric(t, resourceMetrics, "concurrent_seconds").DataPoints[0].Count)
}

type failingMeter struct {
	metric.Meter
}

func (m *failingMeter) Float64Histogram(name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if name == "broken" {
		return nil, errors.New("histogram creation failed")
	}

	return m.Meter.Float64Histogram(name, options...)
}

func (m *failingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == "broken" {
		return nil, errors.New("counter creation failed")
	}

	return m.Meter.Int64Counter(name, options...)
}

func (m *failingMeter) Float64Gauge(name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	if name == "broken" {
		return nil, errors.New("gauge creation failed")
	}

	return m.Meter.Float64Gauge(name, options...)
}

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return metricdata.Metrics{}
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	histogram, ok := findMetric(t, resourceMetrics, name).Data.(metricdata.Histogram[float64])
	require.True(t, ok, "%s is not a float64 histogram", name)

	return histogram
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	counter, ok := findMetric(t, resourceMetrics, name).Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", name)

	return counter
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	gauge, ok := findMetric(t, resourceMetrics, name).Data.(metricdata.Gauge[float64])
	require.True(t, ok, "%s is not a float64 gauge", name)

	return gauge
}
