// Package config loads the lendingstats settings and turns them into database handles
// and OpenTelemetry providers.
//
// Settings are resolved in this order, later sources win:
//   - built-in defaults
//   - an optional lendingstats.yaml (current directory, or the file passed to Load)
//   - environment variables prefixed with LENDINGSTATS_, e.g. LENDINGSTATS_POOL_MAX_CONNS
//   - explicit overrides, usually command line flags
//
// Database handles are created per driver: a pgxpool.Config for DriverPGX, a *sql.DB on lib/pq
// for DriverPostgres, a *sqlx.DB for DriverSQLX and a modernc sqlite *sql.DB for DriverSQLite.
// DriverSnapshot reads a JSON snapshot file instead of a database.
package config
