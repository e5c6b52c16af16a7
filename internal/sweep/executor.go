// Package sweep removes deletion candidates from disk in parallel and
// aggregates the outcome into a report.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/reclaim-cli/reclaim/internal/scan"
)

// ErrProtected rejects a deletion request against a protected path. Nothing
// is touched on disk.
var ErrProtected = errors.New("path is protected")

// DeleteError records one failed removal. Failures never abort the
// remaining deletions.
type DeleteError struct {
	Path  string
	Cause error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Cause)
}

func (e *DeleteError) Unwrap() error { return e.Cause }

// Report aggregates the outcome of one batch. Safe for concurrent writers.
type Report struct {
	DryRun bool

	mu       sync.Mutex
	dirs     int
	files    int
	bytes    int64
	failures []*DeleteError
}

func (r *Report) addSuccess(e *scan.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Dir {
		r.dirs++
	} else {
		r.files++
	}
	r.bytes += e.Size
}

func (r *Report) addFailure(path string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, &DeleteError{Path: path, Cause: cause})
}

// Directories is the count of directories deleted (or that would be).
func (r *Report) Directories() int { r.mu.Lock(); defer r.mu.Unlock(); return r.dirs }

// Files is the count of files deleted (or that would be).
func (r *Report) Files() int { r.mu.Lock(); defer r.mu.Unlock(); return r.files }

// BytesFreed is the byte total freed (or that would be).
func (r *Report) BytesFreed() int64 { r.mu.Lock(); defer r.mu.Unlock(); return r.bytes }

// Failures returns the recorded failures in completion order.
func (r *Report) Failures() []*DeleteError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*DeleteError(nil), r.failures...)
}

// Executor removes entries using a bounded worker pool.
type Executor struct {
	workers int
}

// NewExecutor returns an executor with the given worker budget.
// workers <= 0 means runtime.NumCPU().
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Executor{workers: workers}
}

// Delete removes the given entries, best effort. Directories go recursively,
// files individually. Protected entries are rejected without any filesystem
// mutation. With dryRun set nothing is removed and the report carries the
// same entries and byte totals a real run would.
//
// Cancelling ctx stops scheduling new removals; in-flight removals finish
// and the report reflects only completed operations.
func (x *Executor) Delete(ctx context.Context, entries []*scan.Entry, dryRun bool) *Report {
	report := &Report{DryRun: dryRun}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			x.deleteOne(e, dryRun, report)
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// DeleteOne removes a single entry synchronously. The interactive browser
// uses this for its one-at-a-time deletions.
func (x *Executor) DeleteOne(e *scan.Entry, dryRun bool) *Report {
	report := &Report{DryRun: dryRun}
	x.deleteOne(e, dryRun, report)
	return report
}

func (x *Executor) deleteOne(e *scan.Entry, dryRun bool, report *Report) {
	if e.Protected {
		report.addFailure(e.Path, ErrProtected)
		return
	}
	if err := validateTarget(e.Path); err != nil {
		report.addFailure(e.Path, err)
		return
	}
	if dryRun {
		report.addSuccess(e)
		return
	}

	var err error
	if e.Dir {
		err = os.RemoveAll(e.Path)
	} else {
		err = os.Remove(e.Path)
	}
	if err != nil {
		report.addFailure(e.Path, err)
		return
	}
	report.addSuccess(e)
}

// validateTarget refuses the degenerate paths no pattern should ever
// produce.
func validateTarget(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path %s is not absolute", path)
	}
	if filepath.Clean(path) == string(os.PathSeparator) {
		return errors.New("refusing to delete filesystem root")
	}
	return nil
}
