package benchmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work submitted to a Pool.
type Task func(ctx context.Context) (any, error)

// Pool runs submitted tasks on at most size goroutines at a time.
// A Pool is meant to live for one run: create it, submit, await the futures, and Close it.
type Pool struct {
	size   int
	group   errgroup.Group
	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewPool creates a Pool with the given number of workers.
func NewPool(size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolSize, size)
	}

	pool := &Pool{size: size}
	pool.group.SetLimit(size)

	return pool, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit schedules the task and returns its Future. It blocks while all workers are busy,
// without holding up other submitters or Close. It is safe for concurrent use.
// Tasks never return an error to the pool, so one failing task does not affect the others.
func (p *Pool) Submit(ctx context.Context, operation string, task Task) *Future {
	future := newFuture()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		future.resolve(Outcome{Operation: operation, Err: &TaskFailure{Operation: operation, Cause: ErrPoolClosed}})

		return future
	}

	p.pending.Add(1)
	p.mu.Unlock()

	defer p.pending.Done()

	p.group.Go(func() error {
		future.resolve(runTask(ctx, operation, task))
		return nil
	})

	return future
}

// Close waits for every submitted task to finish. Later submissions fail with ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	// submissions admitted before closing may still wait for a free worker
	p.pending.Wait()

	_ = p.group.Wait()
}

func runTask(ctx context.Context, operation string, task Task) (outcome Outcome) {
	start := time.Now()

	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = Outcome{
				Operation: operation,
				Err:       &TaskFailure{Operation: operation, Cause: fmt.Errorf("%w: %v", ErrTaskPanicked, recovered)},
				Elapsed:   time.Since(start),
			}
		}
	}()

	value, err := task(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return Outcome{Operation: operation, Err: &TaskFailure{Operation: operation, Cause: err}, Elapsed: elapsed}
	}

	return Outcome{Operation: operation, Value: value, Elapsed: elapsed}
}

// Future is the handle of a submitted task.
type Future struct {
	done    chan struct{}
	outcome Outcome
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(outcome Outcome) {
	f.outcome = outcome
	close(f.done)
}

// Await blocks until the task finished and returns its Outcome.
func (f *Future) Await() Outcome {
	<-f.done
	return f.outcome
}

// Done is closed once the task finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}
