// Package browse is the interactive session's state machine: a navigable
// view over the scanned tree with a cursor, sort order, and a
// confirm-then-delete flow. It holds no terminal state, which keeps every
// transition unit-testable.
//
// The browser owns the tree for the rest of the run and never re-scans the
// filesystem; successful deletions mutate the in-memory tree only.
package browse

import (
	"sort"
	"strings"

	"github.com/reclaim-cli/reclaim/internal/scan"
	"github.com/reclaim-cli/reclaim/internal/sweep"
)

// Phase is the browser's state.
type Phase int

const (
	PhaseBrowsing Phase = iota
	PhaseConfirming
	PhaseDeleting
	PhaseExited
)

// SortOrder orders the children of the current directory.
type SortOrder int

const (
	SortSize SortOrder = iota
	SortName
	SortModTime
)

func (s SortOrder) String() string {
	switch s {
	case SortName:
		return "name"
	case SortModTime:
		return "mtime"
	default:
		return "size"
	}
}

// Browser navigates the entry tree.
type Browser struct {
	phase   Phase
	root    *scan.Entry
	stack   []*scan.Entry
	current *scan.Entry
	cursor  int
	order   SortOrder
	target  *scan.Entry
	lastErr string
	status  string
}

// New returns a browser positioned at the tree root, sorted by size.
func New(root *scan.Entry) *Browser {
	b := &Browser{root: root, current: root}
	b.applySort()
	return b
}

func (b *Browser) Phase() Phase           { return b.phase }
func (b *Browser) Current() *scan.Entry   { return b.current }
func (b *Browser) Cursor() int            { return b.cursor }
func (b *Browser) Order() SortOrder       { return b.order }
func (b *Browser) Target() *scan.Entry    { return b.target }
func (b *Browser) LastError() string      { return b.lastErr }
func (b *Browser) Status() string         { return b.status }
func (b *Browser) Entries() []*scan.Entry { return b.current.Children }

// AtRoot reports whether navigate-up would be a no-op.
func (b *Browser) AtRoot() bool { return len(b.stack) == 0 }

// Selected returns the entry under the cursor, nil when the directory is
// empty.
func (b *Browser) Selected() *scan.Entry {
	if b.cursor < 0 || b.cursor >= len(b.current.Children) {
		return nil
	}
	return b.current.Children[b.cursor]
}

func (b *Browser) CursorUp() {
	if b.phase == PhaseBrowsing && b.cursor > 0 {
		b.cursor--
	}
}

func (b *Browser) CursorDown() {
	if b.phase == PhaseBrowsing && b.cursor < len(b.current.Children)-1 {
		b.cursor++
	}
}

func (b *Browser) CursorTop() {
	if b.phase == PhaseBrowsing {
		b.cursor = 0
	}
}

func (b *Browser) CursorBottom() {
	if b.phase == PhaseBrowsing && len(b.current.Children) > 0 {
		b.cursor = len(b.current.Children) - 1
	}
}

// Enter descends into the selected directory. Matched and protected
// directories have no materialized children and are not entered.
func (b *Browser) Enter() {
	if b.phase != PhaseBrowsing {
		return
	}
	sel := b.Selected()
	if sel == nil || !sel.Dir || len(sel.Children) == 0 {
		return
	}
	b.stack = append(b.stack, b.current)
	b.current = sel
	b.cursor = 0
	b.status = ""
	b.applySort()
}

// Back ascends to the parent directory, a no-op at the root.
func (b *Browser) Back() {
	if b.phase != PhaseBrowsing || len(b.stack) == 0 {
		return
	}
	b.current = b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.cursor = 0
	b.status = ""
	b.applySort()
}

// CycleSort toggles size -> name -> mtime ordering.
func (b *Browser) CycleSort() {
	if b.phase != PhaseBrowsing {
		return
	}
	b.order = (b.order + 1) % 3
	b.applySort()
	b.clampCursor()
}

// RequestDelete moves to the confirmation state for the selected entry.
// Protected entries are rejected up front with sweep.ErrProtected.
func (b *Browser) RequestDelete() error {
	if b.phase != PhaseBrowsing {
		return nil
	}
	sel := b.Selected()
	if sel == nil {
		return nil
	}
	if sel.Protected {
		b.lastErr = sel.Name + ": " + sweep.ErrProtected.Error()
		return sweep.ErrProtected
	}
	b.phase = PhaseConfirming
	b.target = sel
	b.lastErr = ""
	return nil
}

// Confirm commits the pending deletion and returns the target. The caller
// runs the deletion and reports back through Resolve.
func (b *Browser) Confirm() *scan.Entry {
	if b.phase != PhaseConfirming {
		return nil
	}
	b.phase = PhaseDeleting
	return b.target
}

// Cancel abandons the pending deletion.
func (b *Browser) Cancel() {
	if b.phase != PhaseConfirming {
		return
	}
	b.phase = PhaseBrowsing
	b.target = nil
}

// Resolve applies the outcome of a deletion. On success the target leaves
// the tree and its size is subtracted from every ancestor's displayed
// aggregate; on failure the tree is unchanged and the error shows inline.
func (b *Browser) Resolve(err error) {
	if b.phase != PhaseDeleting {
		return
	}
	target := b.target
	b.phase = PhaseBrowsing
	b.target = nil

	if err != nil {
		b.lastErr = target.Name + ": " + err.Error()
		return
	}

	kept := b.current.Children[:0]
	for _, c := range b.current.Children {
		if c != target {
			kept = append(kept, c)
		}
	}
	b.current.Children = kept

	for _, ancestor := range append(append([]*scan.Entry{}, b.stack...), b.current) {
		if !ancestor.Matched() {
			ancestor.Size -= target.Size
		}
	}

	b.clampCursor()
	b.lastErr = ""
	b.status = "deleted " + target.Name
}

// Quit ends the session from any state.
func (b *Browser) Quit() {
	b.phase = PhaseExited
}

func (b *Browser) clampCursor() {
	if b.cursor >= len(b.current.Children) {
		b.cursor = len(b.current.Children) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// applySort stabilizes the display order of the current directory:
// directories before files, then by the active order.
func (b *Browser) applySort() {
	children := b.current.Children
	sort.SliceStable(children, func(i, j int) bool {
		a, c := children[i], children[j]
		if a.Dir != c.Dir {
			return a.Dir
		}
		switch b.order {
		case SortName:
			return strings.ToLower(a.Name) < strings.ToLower(c.Name)
		case SortModTime:
			return a.ModTime.After(c.ModTime)
		default:
			if a.Size == c.Size {
				return strings.ToLower(a.Name) < strings.ToLower(c.Name)
			}
			return a.Size > c.Size
		}
	})
}
