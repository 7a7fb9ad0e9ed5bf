package config

import "errors"

// ErrUnsupportedDriver is returned when the configured driver is not one of the Driver constants.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// ErrMissingDSN is returned when a database driver is configured without a DSN.
var ErrMissingDSN = errors.New("dsn must not be empty")

// ErrMissingSnapshotFile is returned when DriverSnapshot is configured without a snapshot file.
var ErrMissingSnapshotFile = errors.New("snapshot file must not be empty")

// ErrReadingConfigFailed is returned when a config file exists but cannot be read or decoded.
var ErrReadingConfigFailed = errors.New("reading config failed")

// ErrOpeningDatabaseFailed is returned when a database handle cannot be created or pinged.
var ErrOpeningDatabaseFailed = errors.New("opening database failed")

// ErrInvalidPoolSettings is returned for negative or inconsistent connection pool settings.
var ErrInvalidPoolSettings = errors.New("invalid connection pool settings")
