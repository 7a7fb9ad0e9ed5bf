package sqlengine

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
	"github.com/AntonStoeckl/lending-analytics-go/lending/sqlengine/internal/adapters"
)

// Supported SQL dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

const defaultTablePrefix = "library_"

// Dataset implements lending.Dataset on top of a relational database that carries the
// lending tables (one table per entity, named <prefix><entity>).
// It is read-only and safe for concurrent use, connection pooling is left to the database handle.
type Dataset struct {
	db               adapters.DBAdapter
	dialectName      string
	dialect          goqu.DialectWrapper
	tablePrefix      string
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
	tracingCollector lending.TracingCollector
}

// NewDatasetFromPGXPool creates a new Dataset using a pgx Pool with optional configuration.
func NewDatasetFromPGXPool(db *pgxpool.Pool, options ...Option) (Dataset, error) {
	if db == nil {
		return Dataset{}, lending.ErrNilDatabaseConnection
	}

	return newDataset(adapters.NewPGXAdapter(db), options...)
}

// NewDatasetFromSQLDB creates a new Dataset using a sql.DB with optional configuration.
func NewDatasetFromSQLDB(db *sql.DB, options ...Option) (Dataset, error) {
	if db == nil {
		return Dataset{}, lending.ErrNilDatabaseConnection
	}

	return newDataset(adapters.NewSQLAdapter(db), options...)
}

// NewDatasetFromSQLX creates a new Dataset using a sqlx.DB with optional configuration.
func NewDatasetFromSQLX(db *sqlx.DB, options ...Option) (Dataset, error) {
	if db == nil {
		return Dataset{}, lending.ErrNilDatabaseConnection
	}

	return newDataset(adapters.NewSQLXAdapter(db), options...)
}

func newDataset(db adapters.DBAdapter, options ...Option) (Dataset, error) {
	ds := Dataset{
		db:          db,
		dialectName: DialectPostgres,
		tablePrefix: defaultTablePrefix,
	}

	for _, option := range options {
		if err := option(&ds); err != nil {
			return Dataset{}, err
		}
	}

	ds.dialect = goqu.Dialect(ds.dialectName)

	return ds, nil
}

// Dialect returns the SQL dialect the Dataset renders its queries in.
func (ds Dataset) Dialect() string {
	return ds.dialectName
}

func (ds Dataset) table(entity string) string {
	return ds.tablePrefix + entity
}

// Ensure Dataset implements lending.Dataset.
var _ lending.Dataset = Dataset{}
