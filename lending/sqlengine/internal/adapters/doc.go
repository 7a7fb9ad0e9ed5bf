// Package adapters provide read-only database adapters for the SQL dataset engine.
//
// Three connection types are supported: pgxpool.Pool, sql.DB and sqlx.DB. All of them
// are presented through the common DBAdapter interface, so the engine builds and runs the
// same queries regardless of the driver in use.
package adapters
