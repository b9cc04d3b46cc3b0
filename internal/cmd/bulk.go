package cmd

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent API requests
const DefaultConcurrency = 5

// BulkResult represents the outcome of a single bulk operation
type BulkResult struct {
	ID      string
	Success bool
	Error   error
	Data    any
}

// runBulkOperation executes operations concurrently with bounded parallelism.
// Results come back in input order; individual failures do not abort the batch.
func runBulkOperation[T any](
	ctx context.Context,
	ids []string,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, id string) (T, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult, len(ids))
	total := len(ids)
	var done int64

	g, ctx := errgroup.WithContext(ctx)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = BulkResult{ID: id, Error: ctx.Err()}
				return nil
			}
			defer sem.Release(1)

			if err := ctx.Err(); err != nil {
				results[i] = BulkResult{ID: id, Error: err}
				return nil
			}

			data, err := operation(ctx, id)
			if err != nil {
				results[i] = BulkResult{ID: id, Error: err}
			} else {
				results[i] = BulkResult{ID: id, Success: true, Data: data}
			}

			if progress && total > 0 {
				current := atomic.AddInt64(&done, 1)
				_, _ = fmt.Fprintf(errOut, "\rFetched %d/%d", current, total)
			}

			return nil // individual errors are collected, never fail the group
		})
	}

	_ = g.Wait()

	if progress && total > 0 {
		_, _ = fmt.Fprintf(errOut, "\rFetched %d/%d\n", atomic.LoadInt64(&done), total)
	}

	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}
