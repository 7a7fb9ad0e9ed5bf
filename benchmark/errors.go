package benchmark

import (
	"errors"
)

var ErrInvalidPoolSize = errors.New("pool size must be at least 1")
var ErrInvalidIterations = errors.New("iterations must be at least 1")
var ErrInvalidTaskTimeout = errors.New("task timeout must not be negative")
var ErrNilAnalytics = errors.New("analytics must not be nil")
var ErrNilResourceSampler = errors.New("resource sampler must not be nil")

var ErrPoolClosed = errors.New("pool is closed")
var ErrTaskPanicked = errors.New("task panicked")
var ErrSamplingFailed = errors.New("sampling host resources failed")
