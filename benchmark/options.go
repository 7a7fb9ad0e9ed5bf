package benchmark

import (
	"fmt"
	"slices"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

const (
	defaultPoolSize   = 8
	defaultAuthorID   = 1
	defaultCategoryID = 1
	defaultIterations = 200
)

// DefaultScalingPoolSizes returns the pool sizes RunScalingCurveSweep uses unless WithPoolSizes is given.
func DefaultScalingPoolSizes() []int {
	return []int{1, 2, 4, 8, 16, 32}
}

type settings struct {
	poolSize         int
	poolSizes        []int
	authorID         int64
	categoryID       int64
	iterations       int
	taskTimeout      time.Duration
	sampler          ResourceSampler
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
}

// Option defines a functional option for configuring a run.
type Option func(*settings) error

func newSettings(options []Option) (settings, error) {
	s := settings{
		poolSize:   defaultPoolSize,
		poolSizes:  DefaultScalingPoolSizes(),
		authorID:   defaultAuthorID,
		categoryID: defaultCategoryID,
		iterations: defaultIterations,
		sampler:    NewHostSampler(),
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}

// WithPoolSize sets the number of workers of mixed batches and throughput sweeps.
func WithPoolSize(size int) Option {
	return func(s *settings) error {
		if size < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidPoolSize, size)
		}

		s.poolSize = size

		return nil
	}
}

// WithPoolSizes sets the sequence of pool sizes of scaling-curve sweeps.
func WithPoolSizes(sizes ...int) Option {
	return func(s *settings) error {
		if len(sizes) == 0 {
			return fmt.Errorf("%w: no pool sizes given", ErrInvalidPoolSize)
		}

		for _, size := range sizes {
			if size < 1 {
				return fmt.Errorf("%w: got %d", ErrInvalidPoolSize, size)
			}
		}

		s.poolSizes = slices.Clone(sizes)

		return nil
	}
}

// WithAuthorID sets the author of the top-readers task of a mixed batch.
// The id is passed on unchecked, an invalid id shows up as that task's failure.
func WithAuthorID(id int64) Option {
	return func(s *settings) error {
		s.authorID = id
		return nil
	}
}

// WithCategoryID sets the category of the reader-ranking task of a mixed batch.
// The id is passed on unchecked, an invalid id shows up as that task's failure.
func WithCategoryID(id int64) Option {
	return func(s *settings) error {
		s.categoryID = id
		return nil
	}
}

// WithIterations sets how often a throughput sweep submits its operation.
func WithIterations(iterations int) Option {
	return func(s *settings) error {
		if iterations < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
		}

		s.iterations = iterations

		return nil
	}
}

// WithTaskTimeout bounds each task of a run. Zero disables the timeout, which is the default.
func WithTaskTimeout(timeout time.Duration) Option {
	return func(s *settings) error {
		if timeout < 0 {
			return ErrInvalidTaskTimeout
		}

		s.taskTimeout = timeout

		return nil
	}
}

// WithResourceSampler replaces the HostSampler of throughput sweeps.
func WithResourceSampler(sampler ResourceSampler) Option {
	return func(s *settings) error {
		if sampler == nil {
			return ErrNilResourceSampler
		}

		s.sampler = sampler

		return nil
	}
}

// WithLogger sets the logger for a run.
func WithLogger(logger lending.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for a run, it takes precedence over WithLogger.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(s *settings) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for a run.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(s *settings) error {
		s.metricsCollector = collector
		return nil
	}
}
