package browse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaim-cli/reclaim/internal/pattern"
	"github.com/reclaim-cli/reclaim/internal/scan"
	"github.com/reclaim-cli/reclaim/internal/sweep"
)

// testTree builds:
//
//	/r            (display size 300)
//	  proj/       (display size 300)
//	    node_modules/  matched, 300 bytes
//	  .ssh/       protected
func testTree() *scan.Entry {
	nm := &scan.Entry{
		Path: "/r/proj/node_modules", Name: "node_modules", Dir: true, Size: 300,
		Reason:  pattern.Reason{Pattern: "node_modules", Kind: pattern.KindDir},
		ModTime: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	proj := &scan.Entry{Path: "/r/proj", Name: "proj", Dir: true, Size: 300, Children: []*scan.Entry{nm}}
	ssh := &scan.Entry{Path: "/r/.ssh", Name: ".ssh", Dir: true, Protected: true}
	return &scan.Entry{Path: "/r", Name: "r", Dir: true, Size: 300, Children: []*scan.Entry{proj, ssh}}
}

func TestNavigation(t *testing.T) {
	b := New(testTree())
	require.Equal(t, PhaseBrowsing, b.Phase())
	require.True(t, b.AtRoot())

	// Size order puts proj (300) before .ssh (0).
	assert.Equal(t, "proj", b.Selected().Name)

	b.Enter()
	assert.Equal(t, "/r/proj", b.Current().Path)
	assert.Equal(t, "node_modules", b.Selected().Name)

	// Matched directories are pruned and cannot be entered.
	b.Enter()
	assert.Equal(t, "/r/proj", b.Current().Path)

	b.Back()
	assert.Equal(t, "/r", b.Current().Path)

	// Navigate-up at the root is a no-op.
	b.Back()
	assert.Equal(t, "/r", b.Current().Path)
}

func TestCursorBounds(t *testing.T) {
	b := New(testTree())
	b.CursorUp()
	assert.Equal(t, 0, b.Cursor())
	b.CursorDown()
	assert.Equal(t, 1, b.Cursor())
	b.CursorDown()
	assert.Equal(t, 1, b.Cursor())
	b.CursorTop()
	assert.Equal(t, 0, b.Cursor())
	b.CursorBottom()
	assert.Equal(t, 1, b.Cursor())
}

func TestCycleSort(t *testing.T) {
	b := New(testTree())
	assert.Equal(t, SortSize, b.Order())
	b.CycleSort()
	assert.Equal(t, SortName, b.Order())
	// Name order puts .ssh before proj.
	assert.Equal(t, ".ssh", b.Entries()[0].Name)
	b.CycleSort()
	assert.Equal(t, SortModTime, b.Order())
	b.CycleSort()
	assert.Equal(t, SortSize, b.Order())
}

func TestDeleteFlow(t *testing.T) {
	b := New(testTree())
	b.Enter() // into proj

	require.NoError(t, b.RequestDelete())
	assert.Equal(t, PhaseConfirming, b.Phase())

	target := b.Confirm()
	require.NotNil(t, target)
	assert.Equal(t, "/r/proj/node_modules", target.Path)
	assert.Equal(t, PhaseDeleting, b.Phase())

	b.Resolve(nil)
	assert.Equal(t, PhaseBrowsing, b.Phase())
	assert.Empty(t, b.Entries())

	// Freed bytes propagate up every ancestor's displayed aggregate.
	assert.Equal(t, int64(0), b.Current().Size)
	b.Back()
	assert.Equal(t, int64(0), b.Current().Size)
}

func TestDeleteCancelled(t *testing.T) {
	b := New(testTree())
	b.Enter()

	require.NoError(t, b.RequestDelete())
	b.Cancel()
	assert.Equal(t, PhaseBrowsing, b.Phase())
	assert.Nil(t, b.Target())
	assert.Len(t, b.Entries(), 1)
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	b := New(testTree())
	b.Enter()

	require.NoError(t, b.RequestDelete())
	b.Confirm()
	b.Resolve(assert.AnError)

	assert.Equal(t, PhaseBrowsing, b.Phase())
	assert.Len(t, b.Entries(), 1)
	assert.Contains(t, b.LastError(), "node_modules")
	assert.Equal(t, int64(300), b.Current().Size)
}

func TestDeleteProtectedRejected(t *testing.T) {
	b := New(testTree())
	b.CursorDown() // .ssh

	err := b.RequestDelete()
	assert.ErrorIs(t, err, sweep.ErrProtected)
	// Rejected before any confirmation state is entered.
	assert.Equal(t, PhaseBrowsing, b.Phase())
	assert.Nil(t, b.Target())
}

func TestQuitFromAnyState(t *testing.T) {
	b := New(testTree())
	b.Enter()
	require.NoError(t, b.RequestDelete())
	b.Quit()
	assert.Equal(t, PhaseExited, b.Phase())
}
