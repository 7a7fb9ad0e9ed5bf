// Package sqlengine provides a relational implementation of lending.Dataset.
//
// The engine reads the lending tables (by default the Django table names, e.g. library_reader,
// library_borrowhistory) through one of three connection types: pgxpool.Pool, sql.DB, or sqlx.DB.
// All queries are built with goqu in prepared mode and rendered in the postgres dialect by default;
// WithDialect(DialectSQLite) switches to sqlite, e.g. for embedded datasets and tests.
//
// Usage:
//
//	dataset, err := sqlengine.NewDatasetFromPGXPool(pool,
//		sqlengine.WithLogger(slog.Default()),
//		sqlengine.WithMetrics(metricsCollector),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	borrows, err := dataset.BorrowHistory(ctx, lending.BuildBorrowFilter().ForReaders(readerID).Finalize())
package sqlengine
