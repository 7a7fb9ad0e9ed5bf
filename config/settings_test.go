package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-analytics-go/config"
)

func Test_Load_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := config.Load("", nil)

	require.NoError(t, err)
	assert.Equal(t, config.DriverSnapshot, s.Driver)
	assert.Equal(t, "./lending.json", s.SnapshotFile)
	assert.Equal(t, "library_", s.TablePrefix)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "human", s.Log.Format)
	assert.Equal(t, 8, s.Pool.MaxConns)
	assert.Equal(t, time.Hour, s.Pool.MaxConnLifetime)
	assert.Equal(t, 8, s.Benchmark.PoolSize)
	assert.Equal(t, []int{1, 2, 4, 8, 16, 32}, s.Benchmark.PoolSizes)
	assert.Equal(t, 200, s.Benchmark.Iterations)
	assert.Equal(t, int64(1), s.Benchmark.AuthorID)
	assert.Zero(t, s.Benchmark.TaskTimeout)
}

func Test_Load_ConfigFile(t *testing.T) {
	// arrange
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
driver: sqlite
dsn: file:lending.db
log:
  level: debug
pool:
  max_conns: 3
  max_conn_idle_time: 90s
benchmark:
  iterations: 50
  pool_sizes: [2, 4]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lendingstats.yaml"), []byte(content), 0o600))

	// act
	s, err := config.Load("", nil)

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, s.Driver)
	assert.Equal(t, "file:lending.db", s.DSN)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, 3, s.Pool.MaxConns)
	assert.Equal(t, 90*time.Second, s.Pool.MaxConnIdleTime)
	assert.Equal(t, 50, s.Benchmark.Iterations)
	assert.Equal(t, []int{2, 4}, s.Benchmark.PoolSizes)
}

func Test_Load_ExplicitConfigFileMustExist(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)

	assert.ErrorIs(t, err, config.ErrReadingConfigFailed)
}

func Test_Load_PrecedenceOfEnvAndOverrides(t *testing.T) {
	// arrange
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("driver: pgx\ndsn: postgres://file\npool:\n  max_conns: 3\n"), 0o600))

	t.Setenv("LENDINGSTATS_DSN", "postgres://env")
	t.Setenv("LENDINGSTATS_POOL_MAX_CONNS", "12")
	t.Setenv("LENDINGSTATS_BENCHMARK_ITERATIONS", "7")

	// act
	s, err := config.Load(file, map[string]any{"benchmark.iterations": 9})

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.DriverPGX, s.Driver)
	assert.Equal(t, "postgres://env", s.DSN)
	assert.Equal(t, 12, s.Pool.MaxConns)
	assert.Equal(t, 9, s.Benchmark.Iterations)
}

func Test_Settings_Validate(t *testing.T) {
	valid := config.Settings{Driver: config.DriverSQLite, DSN: "file:x.db"}

	testCases := []struct {
		description string
		mutate      func(s *config.Settings)
		expectedErr error
	}{
		{description: "valid", mutate: func(*config.Settings) {}},
		{description: "unknown driver", mutate: func(s *config.Settings) { s.Driver = "mysql" }, expectedErr: config.ErrUnsupportedDriver},
		{description: "missing dsn", mutate: func(s *config.Settings) { s.DSN = "" }, expectedErr: config.ErrMissingDSN},
		{
			description: "missing snapshot file",
			mutate:      func(s *config.Settings) { s.Driver = config.DriverSnapshot },
			expectedErr: config.ErrMissingSnapshotFile,
		},
		{
			description: "min above max",
			mutate:      func(s *config.Settings) { s.Pool = config.PoolSettings{MaxConns: 2, MinConns: 3} },
			expectedErr: config.ErrInvalidPoolSettings,
		},
		{
			description: "negative duration",
			mutate:      func(s *config.Settings) { s.Pool.MaxConnLifetime = -time.Second },
			expectedErr: config.ErrInvalidPoolSettings,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			s := valid
			tc.mutate(&s)

			err := s.Validate()

			if tc.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
		})
	}
}
