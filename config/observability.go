package config

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ObservabilityProviders holds in-process OpenTelemetry providers. Metrics are pulled on demand
// through a ManualReader, spans are sampled and carry ids for log correlation but are not exported.
type ObservabilityProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Resource       *resource.Resource

	reader *sdkmetric.ManualReader
}

// NewObservabilityProviders creates the providers for serviceName.
func NewObservabilityProviders(ctx context.Context, serviceName, serviceVersion string) (*ObservabilityProviders, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewManualReader()

	return &ObservabilityProviders{
		TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithResource(res)),
		MeterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)),
		Resource:       res,
		reader:         reader,
	}, nil
}

// InstallGlobal registers the providers and the W3C trace context propagator as OpenTelemetry globals.
func (p *ObservabilityProviders) InstallGlobal() {
	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

// Collect pulls the current state of all metrics.
func (p *ObservabilityProviders) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var resourceMetrics metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &resourceMetrics); err != nil {
		return metricdata.ResourceMetrics{}, err
	}

	return resourceMetrics, nil
}

// Shutdown flushes and stops both providers.
func (p *ObservabilityProviders) Shutdown(ctx context.Context) error {
	return errors.Join(p.TracerProvider.Shutdown(ctx), p.MeterProvider.Shutdown(ctx))
}
