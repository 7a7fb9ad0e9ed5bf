// Package analytics implements the read-only aggregations over a lending.Dataset.
//
// Every operation follows the same two phases: a query phase that loads the entities it needs
// from the Dataset, and a pure projection phase (the exported Project* functions) that turns the
// loaded rows into an ordered result. Projections never mutate their input and sort with a full
// tie-break, so two runs over an unchanged dataset produce identical results.
//
// Example:
//
//	engine, err := analytics.NewEngine(snapshot, analytics.WithLogger(slog.Default()))
//	if err != nil {
//		return err
//	}
//
//	trends, err := engine.MonthlyBorrowTrendsByCategory(ctx)
package analytics
