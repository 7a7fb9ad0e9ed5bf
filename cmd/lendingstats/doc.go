// Command lendingstats runs the lending aggregations and concurrency benchmarks against a
// database or a JSON snapshot and prints the results as JSON.
//
//	lendingstats --driver sqlite --dsn file:lending.db query reader_activity_duration --max-duration 90
//	lendingstats --driver snapshot --snapshot-file lending.json batch --pool-size 4
//	lendingstats --driver pgx --dsn postgres://... scaling --pool-sizes 1,2,4,8
//
// Settings not given as flags come from lendingstats.yaml and LENDINGSTATS_* environment variables.
package main
