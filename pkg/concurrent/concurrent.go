package concurrent

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers resolves a worker count: non-positive values mean GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Concurrent runs action for each item on an errgroup bounded by limit
// goroutines and waits for all of them. It returns the first error.
func Concurrent[T any](items []T, limit int, action func(T) error) error {
	var group errgroup.Group
	group.SetLimit(Workers(limit))
	for _, item := range items {
		group.Go(func() error {
			return action(item)
		})
	}
	return group.Wait()
}

// ForEachChunk splits [0, n) into at most workers contiguous ranges and
// runs fn on each range in its own goroutine. Ranges never overlap, so fn
// may write to per-index state without locking.
func ForEachChunk(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var group errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		group.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = group.Wait()
}
