// Package oteladapters implements the lending observability interfaces on top of OpenTelemetry.
//
// The sqlengine datasets, the analytics engine, and the benchmark harness only depend on the
// small interfaces declared in package lending. Wire these adapters in to get histograms,
// counters, gauges, spans, and trace-correlated logs without writing glue code:
//
//	meter := otel.Meter("lendingstats")
//	tracer := otel.Tracer("lendingstats")
//
//	engine, err := analytics.NewEngine(dataset,
//		analytics.WithMetrics(oteladapters.NewMetricsCollector(meter)),
//		analytics.WithTracing(oteladapters.NewTracingCollector(tracer)),
//		analytics.WithContextualLogger(oteladapters.NewSlogBridgeLogger("lendingstats")),
//	)
package oteladapters
