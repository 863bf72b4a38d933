package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	dErrors "skillmint/pkg/domain-errors"
	"skillmint/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes     int32
	Errors        int32
	Conflicts     int32
	NotFounds     int32
	InvalidStates int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds + r.InvalidStates
}

// RunConcurrent executes fn in parallel goroutines and collects results.
// Errors are categorized into success, conflict, not_found, invalid_state, or
// generic error. This helper replaces the common pattern of WaitGroup +
// atomic counters in tests, e.g. racing Verify calls on one proof.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, notFounds, invalidStates atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			case errors.Is(err, sentinel.ErrNotFound):
				notFounds.Add(1)
			case dErrors.HasCode(err, dErrors.CodeInvalidState):
				invalidStates.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes:     successes.Load(),
		Errors:        errs.Load(),
		Conflicts:     conflicts.Load(),
		NotFounds:     notFounds.Load(),
		InvalidStates: invalidStates.Load(),
	}
}

// RunConcurrentCtx executes fn in parallel goroutines with context support.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}
