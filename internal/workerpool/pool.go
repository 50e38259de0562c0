// Package workerpool provides a small bounded fan-out/fan-in helper built
// on golang.org/x/sync/semaphore, grounded on the teacher's
// internal/referee/validation_engine.go use of semaphore.Weighted to cap
// concurrent referees. CaDrA's top-N driver (E) and permutation driver (F)
// both use this to bound work to ncores.
package workerpool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrency to a fixed weight (ncores).
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a Pool that runs at most ncores tasks concurrently. ncores
// <= 0 is treated as 1 (no parallelism, but still bounded).
func New(ncores int) *Pool {
	if ncores <= 0 {
		ncores = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(ncores))}
}

// Task is one unit of work submitted to the pool, returning a result or error.
type Task[T any] func(ctx context.Context) (T, error)

// Result pairs a task's index (its position in the submitted slice) with
// its outcome, so callers can reassemble order-independent results.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// RunAll runs every task with at most the pool's configured concurrency,
// waits for all to complete, and returns their results indexed by submission
// order. A single task's error does not cancel the others; the caller
// decides how to interpret per-task failures.
func RunAll[T any](ctx context.Context, pool *Pool, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pool.sem.Acquire(ctx, 1); err != nil {
				results[i] = Result[T]{Index: i, Err: err}
				return
			}
			defer pool.sem.Release(1)
			v, err := task(ctx)
			results[i] = Result[T]{Index: i, Value: v, Err: err}
		}()
	}
	wg.Wait()
	return results
}
