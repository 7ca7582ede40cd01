package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds
}

// RunConcurrent executes fn in parallel goroutines and buckets the outcomes.
// Conflicts are duplicate registrations (domain or store level); not-founds
// cover every "not registered" code.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, notFounds atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case isConflict(err):
				conflicts.Add(1)
			case isNotFound(err):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
	}
}

func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrAlreadyUsed) ||
		dErrors.HasCode(err, dErrors.CodeDuplicateCenter) ||
		dErrors.HasCode(err, dErrors.CodeConflict)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound) ||
		dErrors.HasCode(err, dErrors.CodeNotFound) ||
		dErrors.HasCode(err, dErrors.CodeCenterNotRegistered) ||
		dErrors.HasCode(err, dErrors.CodeVaccinationNotRegistered)
}
