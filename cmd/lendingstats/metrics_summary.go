package main

import (
	"slices"
	"strings"

	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// metricSummary condenses one instrument over all its attribute sets.
type metricSummary struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	DataPoints int     `json:"data_points"`
	Count      uint64  `json:"count,omitempty"`
	Sum        float64 `json:"sum"`
	Max        float64 `json:"max,omitempty"`
}

func summarizeMetrics(resourceMetrics metricdata.ResourceMetrics) []metricSummary {
	summaries := make([]metricSummary, 0)

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if summary, ok := summarizeMetric(m); ok {
				summaries = append(summaries, summary)
			}
		}
	}

	slices.SortFunc(summaries, func(a, b metricSummary) int {
		return strings.Compare(a.Name, b.Name)
	})

	return summaries
}

func summarizeMetric(m metricdata.Metrics) (metricSummary, bool) {
	summary := metricSummary{Name: m.Name}

	switch data := m.Data.(type) {
	case metricdata.Histogram[float64]:
		summary.Kind = "histogram"
		summary.DataPoints = len(data.DataPoints)

		for _, dp := range data.DataPoints {
			summary.Count += dp.Count
			summary.Sum += dp.Sum

			if value, defined := dp.Max.Value(); defined && value > summary.Max {
				summary.Max = value
			}
		}

	case metricdata.Sum[int64]:
		summary.Kind = "counter"
		summary.DataPoints = len(data.DataPoints)

		for _, dp := range data.DataPoints {
			summary.Sum += float64(dp.Value)
		}

	case metricdata.Gauge[float64]:
		summary.Kind = "gauge"
		summary.DataPoints = len(data.DataPoints)

		for _, dp := range data.DataPoints {
			summary.Sum += dp.Value
			summary.Max = max(summary.Max, dp.Value)
		}

	default:
		return metricSummary{}, false
	}

	return summary, true
}
