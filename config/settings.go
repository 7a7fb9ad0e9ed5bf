package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported drivers.
const (
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLX     = "sqlx"
	DriverSQLite   = "sqlite"
	DriverSnapshot = "snapshot"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "LENDINGSTATS"

const configName = "lendingstats"

// Settings is the complete lendingstats configuration.
type Settings struct {
	Driver       string            `mapstructure:"driver"`
	DSN          string            `mapstructure:"dsn"`
	SnapshotFile string            `mapstructure:"snapshot_file"`
	TablePrefix  string            `mapstructure:"table_prefix"`
	Log          LogSettings       `mapstructure:"log"`
	Pool         PoolSettings      `mapstructure:"pool"`
	Benchmark    BenchmarkSettings `mapstructure:"benchmark"`
}

// LogSettings configures the slog handler of the CLI.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PoolSettings tunes the database connection pool. MaxIdleConns is ignored by pgxpool,
// MinConns and HealthCheckPeriod are only used by pgxpool. ConnectAttempts bounds the pings
// on open, zero means a single attempt.
type PoolSettings struct {
	MaxConns          int           `mapstructure:"max_conns"`
	MinConns          int           `mapstructure:"min_conns"`
	MaxIdleConns      int           `mapstructure:"max_idle_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ConnectAttempts   int           `mapstructure:"connect_attempts"`
}

// BenchmarkSettings are the defaults of the benchmark commands.
type BenchmarkSettings struct {
	PoolSize    int           `mapstructure:"pool_size"`
	PoolSizes   []int         `mapstructure:"pool_sizes"`
	Iterations  int           `mapstructure:"iterations"`
	AuthorID    int64         `mapstructure:"author_id"`
	CategoryID  int64         `mapstructure:"category_id"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("driver", DriverSnapshot)
	v.SetDefault("dsn", "")
	v.SetDefault("snapshot_file", "./lending.json")
	v.SetDefault("table_prefix", "library_")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")

	v.SetDefault("pool.max_conns", 8)
	v.SetDefault("pool.min_conns", 2)
	v.SetDefault("pool.max_idle_conns", 4)
	v.SetDefault("pool.max_conn_lifetime", time.Hour)
	v.SetDefault("pool.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("pool.health_check_period", time.Minute)
	v.SetDefault("pool.connect_timeout", 5*time.Second)
	v.SetDefault("pool.connect_attempts", 3)

	v.SetDefault("benchmark.pool_size", 8)
	v.SetDefault("benchmark.pool_sizes", []int{1, 2, 4, 8, 16, 32})
	v.SetDefault("benchmark.iterations", 200)
	v.SetDefault("benchmark.author_id", 1)
	v.SetDefault("benchmark.category_id", 1)
	v.SetDefault("benchmark.task_timeout", time.Duration(0))
}

// Load resolves the Settings. An empty configFile looks for lendingstats.yaml in the current
// directory and tolerates its absence, an explicit configFile must exist.
// Overrides are applied last, keys use the dotted form, e.g. "pool.max_conns".
func Load(configFile string, overrides map[string]any) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, errors.Join(ErrReadingConfigFailed, err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Join(ErrReadingConfigFailed, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate checks the driver and its connection settings.
func (s Settings) Validate() error {
	switch s.Driver {
	case DriverPGX, DriverPostgres, DriverSQLX, DriverSQLite:
		if s.DSN == "" {
			return fmt.Errorf("%w: driver %s", ErrMissingDSN, s.Driver)
		}
	case DriverSnapshot:
		if s.SnapshotFile == "" {
			return ErrMissingSnapshotFile
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, s.Driver)
	}

	return s.Pool.Validate()
}

// Validate rejects negative values and MinConns above MaxConns.
func (p PoolSettings) Validate() error {
	if p.MaxConns < 0 || p.MinConns < 0 || p.MaxIdleConns < 0 || p.ConnectAttempts < 0 {
		return fmt.Errorf("%w: connection counts must not be negative", ErrInvalidPoolSettings)
	}

	if p.MaxConns > 0 && p.MinConns > p.MaxConns {
		return fmt.Errorf("%w: min_conns %d exceeds max_conns %d", ErrInvalidPoolSettings, p.MinConns, p.MaxConns)
	}

	if p.MaxConnLifetime < 0 || p.MaxConnIdleTime < 0 || p.HealthCheckPeriod < 0 || p.ConnectTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidPoolSettings)
	}

	return nil
}
