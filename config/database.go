package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	sqlDriverPostgres = "postgres"
	sqlDriverSQLite   = "sqlite"
)

// PGXPoolConfig parses dsn and applies the pool settings. Zero settings keep the pgxpool defaults.
func PGXPoolConfig(dsn string, pool PoolSettings) (*pgxpool.Config, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	if err := pool.Validate(); err != nil {
		return nil, err
	}

	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	if pool.MaxConns > 0 {
		dbConfig.MaxConns = int32(pool.MaxConns) //nolint:gosec
	}

	if pool.MinConns > 0 {
		dbConfig.MinConns = int32(pool.MinConns) //nolint:gosec
	}

	if pool.MaxConnLifetime > 0 {
		dbConfig.MaxConnLifetime = pool.MaxConnLifetime
	}

	if pool.MaxConnIdleTime > 0 {
		dbConfig.MaxConnIdleTime = pool.MaxConnIdleTime
	}

	if pool.HealthCheckPeriod > 0 {
		dbConfig.HealthCheckPeriod = pool.HealthCheckPeriod
	}

	if pool.ConnectTimeout > 0 {
		dbConfig.ConnConfig.ConnectTimeout = pool.ConnectTimeout
	}

	return dbConfig, nil
}

// OpenPGXPool creates and pings a pgx pool.
func OpenPGXPool(ctx context.Context, dsn string, pool PoolSettings) (*pgxpool.Pool, error) {
	dbConfig, err := PGXPoolConfig(dsn, pool)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	if pingErr := pingWithRetry(ctx, pool.ConnectAttempts, defaultRetryBaseDelay, db.Ping); pingErr != nil {
		db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, pingErr)
	}

	return db, nil
}

// OpenSQLDB opens and pings a *sql.DB on the lib/pq postgres driver.
func OpenSQLDB(ctx context.Context, dsn string, pool PoolSettings) (*sql.DB, error) {
	return openSQL(ctx, sqlDriverPostgres, dsn, pool)
}

// OpenSQLite opens and pings a *sql.DB on the modernc sqlite driver.
// In-memory databases need pool.MaxConns of 1 to stay alive and consistent.
func OpenSQLite(ctx context.Context, dsn string, pool PoolSettings) (*sql.DB, error) {
	return openSQL(ctx, sqlDriverSQLite, dsn, pool)
}

// OpenSQLX opens and pings a *sqlx.DB on the lib/pq postgres driver.
func OpenSQLX(ctx context.Context, dsn string, pool PoolSettings) (*sqlx.DB, error) {
	db, err := OpenSQLDB(ctx, dsn, pool)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, sqlDriverPostgres), nil
}

func openSQL(ctx context.Context, driverName, dsn string, pool PoolSettings) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	if err := pool.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	configureSQLPool(db, pool)

	if pingErr := pingWithRetry(ctx, pool.ConnectAttempts, defaultRetryBaseDelay, db.PingContext); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, pingErr)
	}

	return db, nil
}

func configureSQLPool(db *sql.DB, pool PoolSettings) {
	if pool.MaxConns > 0 {
		db.SetMaxOpenConns(pool.MaxConns)
	}

	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}

	if pool.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(pool.MaxConnLifetime)
	}

	if pool.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.MaxConnIdleTime)
	}
}
