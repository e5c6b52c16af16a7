// Package scan walks a filesystem subtree in parallel, classifying entries
// against the configured patterns and producing a navigable tree of deletion
// candidates with aggregated sizes.
//
// Matched directories are pruned: the walk never descends into them, and
// their byte total comes from a separate recursive size pass. This bounds
// the traversal to the size of the non-matched tree no matter how deep a
// matched subtree is.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/reclaim-cli/reclaim/internal/pattern"
	"github.com/reclaim-cli/reclaim/internal/protect"
)

// Progress exposes live counters for a scan in flight. Counters use relaxed
// atomics; readers only need eventual consistency.
type Progress struct {
	Dirs    atomic.Int64
	Files   atomic.Int64
	Matches atomic.Int64
	Bytes   atomic.Int64
}

// Options configures a scanner.
type Options struct {
	// Root is the directory to scan. Resolved to an absolute path.
	Root     string
	Patterns *pattern.Set
	Oracle   *protect.Oracle

	// Concurrency bounds the worker pool. 0 means runtime.NumCPU().
	Concurrency int

	// MaxDepth limits descent below the root. 0 means unlimited.
	MaxDepth int

	// Progress, when non-nil, receives live counters.
	Progress *Progress
}

// Scanner walks a tree once. Not reusable across runs.
type Scanner struct {
	opts     Options
	sem      chan struct{}
	progress *Progress

	mu       sync.Mutex
	warnings []Warning
}

// New returns a scanner for the given options.
func New(opts Options) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	progress := opts.Progress
	if progress == nil {
		progress = &Progress{}
	}
	return &Scanner{
		opts:     opts,
		sem:      make(chan struct{}, opts.Concurrency),
		progress: progress,
	}
}

// Scan traverses the tree and returns the retained entries. It fails only
// when the root itself is missing or not a directory; all other failures
// are recorded as warnings. Cancelling ctx stops the traversal; the result
// then covers the directories finished before the abort.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	abs, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", abs)
	}

	root := &Entry{
		Path:    abs,
		Name:    filepath.Base(abs),
		Dir:     true,
		ModTime: info.ModTime(),
	}
	s.walk(ctx, root, 0)
	root.finalize()

	return &Result{Root: root, Warnings: s.warnings}, nil
}

// walk lists one directory and classifies its children, recursing into
// unmatched subdirectories. Independent subtrees run on the worker pool.
func (s *Scanner) walk(ctx context.Context, dir *Entry, depth int) {
	listing, err := os.ReadDir(dir.Path)
	if err != nil {
		s.warn(dir.Path, err)
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	appendChild := func(c *Entry) {
		mu.Lock()
		dir.Children = append(dir.Children, c)
		mu.Unlock()
	}

	for _, de := range listing {
		if ctx.Err() != nil {
			break
		}
		name := de.Name()
		full := filepath.Join(dir.Path, name)

		if !de.IsDir() {
			// Files and symlinks. Symlinks are never followed, but the
			// link itself may still match by name.
			s.progress.Files.Add(1)
			reason := s.opts.Patterns.Classify(name, pattern.KindFile)
			if reason.None() {
				continue
			}
			fi, err := de.Info()
			if err != nil {
				s.warn(full, err)
				continue
			}
			s.progress.Matches.Add(1)
			s.progress.Bytes.Add(fi.Size())
			appendChild(&Entry{
				Path:    full,
				Name:    name,
				Reason:  reason,
				Size:    fi.Size(),
				ModTime: fi.ModTime(),
			})
			continue
		}

		s.progress.Dirs.Add(1)

		if s.opts.Oracle != nil && s.opts.Oracle.IsProtected(full) {
			appendChild(&Entry{Path: full, Name: name, Dir: true, Protected: true})
			continue
		}

		if reason := s.opts.Patterns.Classify(name, pattern.KindDir); !reason.None() {
			fi, err := de.Info()
			if err != nil {
				s.warn(full, err)
				continue
			}
			size := s.sizeOf(ctx, full)
			s.progress.Matches.Add(1)
			s.progress.Bytes.Add(size)
			appendChild(&Entry{
				Path:    full,
				Name:    name,
				Dir:     true,
				Reason:  reason,
				Size:    size,
				ModTime: fi.ModTime(),
			})
			continue
		}

		if s.opts.MaxDepth > 0 && depth+1 >= s.opts.MaxDepth {
			continue
		}

		child := &Entry{Path: full, Name: name, Dir: true}
		if fi, err := de.Info(); err == nil {
			child.ModTime = fi.ModTime()
		}

		wg.Add(1)
		run := func() {
			defer wg.Done()
			s.walk(ctx, child, depth+1)
			// An unmatched directory earns its place in the tree only as
			// the ancestor of some match.
			if len(child.Children) > 0 {
				appendChild(child)
			}
		}
		select {
		case s.sem <- struct{}{}:
			go func() {
				defer func() { <-s.sem }()
				run()
			}()
		default:
			run()
		}
	}

	wg.Wait()
}

// sizeOf computes the recursive byte total of a pruned match. Per-entry
// failures inside the subtree are recorded and the rest keeps counting.
func (s *Scanner) sizeOf(ctx context.Context, path string) int64 {
	var size int64
	err := filepath.WalkDir(path, func(p string, de fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.warn(p, err)
			return fs.SkipDir
		}
		if de.IsDir() {
			return nil
		}
		if de.Type()&os.ModeSymlink != 0 {
			return nil
		}
		fi, err := de.Info()
		if err != nil {
			s.warn(p, err)
			return nil
		}
		size += fi.Size()
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.warn(path, err)
	}
	return size
}

func (s *Scanner) warn(path string, err error) {
	s.mu.Lock()
	s.warnings = append(s.warnings, Warning{Path: path, Err: err})
	s.mu.Unlock()
}
