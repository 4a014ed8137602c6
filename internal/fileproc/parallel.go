// Package fileproc provides bounded concurrent file processing.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected. Safe on a nil
// receiver.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. 2x is a good fit for mixed I/O and CGO parse workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each item is processed.
type ProgressFunc func()

// Workers resolves a configured worker cap, defaulting to 2x NumCPU.
func Workers(maxWorkers int) int {
	if maxWorkers <= 0 {
		return runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return maxWorkers
}

// MapN processes items with at most maxWorkers goroutines in flight and
// returns results in input order, skipping failed items. Failures are
// collected per item path; completion order never affects results.
func MapN[T any, R any](
	items []T,
	maxWorkers int,
	pathOf func(T) string,
	fn func(T) (R, error),
	onProgress ProgressFunc,
) ([]R, *ProcessingErrors) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]*R, len(items))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers))
	for i, item := range items {
		p.Go(func() {
			r, err := fn(item)
			if err != nil {
				errs.Add(pathOf(item), err)
			} else {
				results[i] = &r
			}
			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	out := make([]R, 0, len(items))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if !errs.HasErrors() {
		return out, nil
	}
	return out, errs
}

// MapNContext is MapN with cancellation: items not yet started when the
// context is canceled are recorded as context errors.
func MapNContext[T any, R any](
	ctx context.Context,
	items []T,
	maxWorkers int,
	pathOf func(T) string,
	fn func(T) (R, error),
	onProgress ProgressFunc,
) ([]R, *ProcessingErrors) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]*R, len(items))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers))
	for i, item := range items {
		p.Go(func() {
			select {
			case <-ctx.Done():
				errs.Add(pathOf(item), ctx.Err())
				if onProgress != nil {
					onProgress()
				}
				return
			default:
			}

			r, err := fn(item)
			if err != nil {
				errs.Add(pathOf(item), err)
			} else {
				results[i] = &r
			}
			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	out := make([]R, 0, len(items))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if !errs.HasErrors() {
		return out, nil
	}
	return out, errs
}
