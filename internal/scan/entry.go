package scan

import (
	"sort"
	"time"

	"github.com/reclaim-cli/reclaim/internal/pattern"
)

// Entry is a node discovered during scanning. Entries are created by the
// scanner and immutable for the rest of the run, except that the browser
// removes deleted nodes and adjusts ancestor display sizes.
type Entry struct {
	// Path is the absolute filesystem path, unique within a scan.
	Path string
	Name string
	Dir  bool

	// Reason is the matched pattern, zero for ancestors retained only for
	// navigation and for protected roots.
	Reason pattern.Reason

	// Size is the recursive byte total for a matched directory, the file
	// size for a file, and the sum of matched descendant sizes for an
	// unmatched ancestor (display only).
	Size    int64
	ModTime time.Time

	// Protected entries are never matched and never descended past.
	Protected bool

	// Children is populated only for unmatched, unprotected directories.
	// A matched directory is pruned: its subtree is never materialized.
	Children []*Entry
}

// Matched reports whether the entry is a deletion candidate.
func (e *Entry) Matched() bool {
	return !e.Protected && !e.Reason.None()
}

// Matches collects every deletion candidate in the subtree, depth-first.
func (e *Entry) Matches() []*Entry {
	var out []*Entry
	e.walkMatches(&out)
	return out
}

func (e *Entry) walkMatches(out *[]*Entry) {
	if e.Matched() {
		*out = append(*out, e)
		return
	}
	for _, c := range e.Children {
		c.walkMatches(out)
	}
}

// finalize sorts children by name for a deterministic result and computes
// display sizes for unmatched ancestors. Returns the subtree's byte total.
func (e *Entry) finalize() int64 {
	if e.Protected {
		return 0
	}
	if e.Matched() || !e.Dir {
		return e.Size
	}
	sort.Slice(e.Children, func(i, j int) bool {
		return e.Children[i].Name < e.Children[j].Name
	})
	var total int64
	for _, c := range e.Children {
		total += c.finalize()
	}
	e.Size = total
	return total
}

// Warning records a per-entry failure during traversal. Warnings never abort
// the scan.
type Warning struct {
	Path string
	Err  error
}

// Result is a completed scan: the retained tree plus accumulated warnings.
type Result struct {
	Root     *Entry
	Warnings []Warning
}

// TotalSize is the byte total across all deletion candidates.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, e := range r.Root.Matches() {
		total += e.Size
	}
	return total
}
