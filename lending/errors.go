package lending

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyTablePrefix = errors.New("empty table prefix supplied")
var ErrUnsupportedDialect = errors.New("unsupported sql dialect")
var ErrNilDataset = errors.New("dataset must not be nil")

var ErrBuildingQueryFailed = errors.New("building a sql query failed")
var ErrQueryingDatasetFailed = errors.New("querying the dataset failed")
var ErrScanningRowFailed = errors.New("scanning a database row failed")
var ErrInvalidSnapshot = errors.New("invalid dataset snapshot")

var ErrInvalidFilterID = errors.New("filter id must be a positive integer")
var ErrAuthorNotFound = errors.New("author not found")
var ErrCategoryNotFound = errors.New("book category not found")

// ErrInvariantViolated signals data that contradicts the data model, e.g. a borrowed book without any category
// in a place where at least one category is guaranteed.
var ErrInvariantViolated = errors.New("dataset invariant violated")
