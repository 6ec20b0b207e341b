// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rkoval/rustcx/pkg/analyzer"
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

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
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
// count. 2x absorbs read stalls on mixed I/O workloads.
const DefaultWorkerMultiplier = 2

// ErrorFunc is called when a file fails processing. Receives the file path
// and the error. If nil, errors are only collected.
type ErrorFunc func(path string, err error)

// MapFilesIndexed processes files in parallel and returns results in input
// order, regardless of completion order. Each result lands in the slice
// position matching its input index; files that errored are dropped from
// the compacted result, keeping the relative order of the survivors.
//
// A progress tracker carried on the context (analyzer.WithTracker) is
// ticked once per file. Errors are collected and also forwarded to onError
// as they happen.
func MapFilesIndexed[T any](ctx context.Context, files []string, maxWorkers int, fn func(path string) (T, error), onError ErrorFunc) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.SetTotal(len(files))
	}

	slots := make([]T, len(files))
	filled := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			result, err := fn(path)
			if tracker != nil {
				tracker.Tick(path)
			}

			if err != nil {
				errs.Add(path, err)
				if onError != nil {
					onError(path, err)
				}
				return nil // individual file errors don't stop the pool
			}

			slots[i] = result
			filled[i] = true
			return nil
		})
	}
	_ = p.Wait() // context errors are already captured in errs

	results := make([]T, 0, len(files))
	for i := range slots {
		if filled[i] {
			results = append(results, slots[i])
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// MapFiles processes files in parallel with default worker count and no
// error callback. Results preserve input order.
func MapFiles[T any](ctx context.Context, files []string, fn func(path string) (T, error)) ([]T, *ProcessingErrors) {
	return MapFilesIndexed(ctx, files, 0, fn, nil)
}
