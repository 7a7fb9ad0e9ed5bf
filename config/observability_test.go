package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-analytics-go/config"
	"github.com/AntonStoeckl/lending-analytics-go/lending/oteladapters"
)

func Test_ObservabilityProviders_CollectsRecordedMetrics(t *testing.T) {
	// arrange
	providers, err := config.NewObservabilityProviders(context.Background(), "lendingstats-test", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	collector := oteladapters.NewMetricsCollector(providers.MeterProvider.Meter("test"))

	// act
	collector.RecordDuration("analytics_operation_duration_seconds", 20*time.Millisecond, nil)
	resourceMetrics, collectErr := providers.Collect(context.Background())

	// assert
	require.NoError(t, collectErr)
	require.Len(t, resourceMetrics.ScopeMetrics, 1)
	assert.Equal(t, "analytics_operation_duration_seconds", resourceMetrics.ScopeMetrics[0].Metrics[0].Name)
}

func Test_ObservabilityProviders_TracerProducesValidSpans(t *testing.T) {
	providers, err := config.NewObservabilityProviders(context.Background(), "lendingstats-test", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	_, span := providers.TracerProvider.Tracer("test").Start(context.Background(), "analytics.operation")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
}
