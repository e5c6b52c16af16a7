package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaim-cli/reclaim/internal/pattern"
	"github.com/reclaim-cli/reclaim/internal/scan"
)

func makeTree(t *testing.T) (string, []*scan.Entry) {
	t.Helper()
	root := t.TempDir()

	nm := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(filepath.Join(nm, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nm, "pkg", "index.js"), make([]byte, 2048), 0o644))

	store := filepath.Join(root, ".DS_Store")
	require.NoError(t, os.WriteFile(store, make([]byte, 100), 0o644))

	entries := []*scan.Entry{
		{Path: nm, Name: "node_modules", Dir: true, Size: 2048,
			Reason: pattern.Reason{Pattern: "node_modules", Kind: pattern.KindDir}},
		{Path: store, Name: ".DS_Store", Size: 100,
			Reason: pattern.Reason{Pattern: ".DS_Store", Kind: pattern.KindFile}},
	}
	return root, entries
}

func TestDeleteRemovesEntries(t *testing.T) {
	_, entries := makeTree(t)

	report := NewExecutor(2).Delete(context.Background(), entries, false)

	assert.Equal(t, 1, report.Directories())
	assert.Equal(t, 1, report.Files())
	assert.Equal(t, int64(2148), report.BytesFreed())
	assert.Empty(t, report.Failures())

	for _, e := range entries {
		_, err := os.Lstat(e.Path)
		assert.True(t, os.IsNotExist(err), "%s should be gone", e.Path)
	}
}

func TestDeleteDryRun(t *testing.T) {
	_, entries := makeTree(t)

	dry := NewExecutor(2).Delete(context.Background(), entries, true)

	// Same report shape as a real run, nothing removed.
	assert.True(t, dry.DryRun)
	assert.Equal(t, 1, dry.Directories())
	assert.Equal(t, 1, dry.Files())
	assert.Equal(t, int64(2148), dry.BytesFreed())
	assert.Empty(t, dry.Failures())

	for _, e := range entries {
		_, err := os.Lstat(e.Path)
		assert.NoError(t, err, "%s should still exist", e.Path)
	}
}

func TestDeleteDryRunIdempotent(t *testing.T) {
	_, entries := makeTree(t)
	x := NewExecutor(2)

	first := x.Delete(context.Background(), entries, true)
	second := x.Delete(context.Background(), entries, true)

	assert.Equal(t, first.Directories(), second.Directories())
	assert.Equal(t, first.Files(), second.Files())
	assert.Equal(t, first.BytesFreed(), second.BytesFreed())
}

func TestDeleteProtectedRefused(t *testing.T) {
	root := t.TempDir()
	ssh := filepath.Join(root, ".ssh")
	require.NoError(t, os.MkdirAll(ssh, 0o700))

	report := NewExecutor(1).Delete(context.Background(), []*scan.Entry{
		{Path: ssh, Name: ".ssh", Dir: true, Protected: true},
	}, false)

	require.Len(t, report.Failures(), 1)
	assert.ErrorIs(t, report.Failures()[0], ErrProtected)
	assert.Equal(t, 0, report.Directories())

	_, err := os.Stat(ssh)
	assert.NoError(t, err, "protected path must not be touched")
}

func TestDeleteMissingPathRecordsFailure(t *testing.T) {
	gone := filepath.Join(t.TempDir(), "vanished")
	report := NewExecutor(1).Delete(context.Background(), []*scan.Entry{
		{Path: gone, Name: "vanished", Size: 10},
	}, false)

	require.Len(t, report.Failures(), 1)
	assert.Equal(t, gone, report.Failures()[0].Path)
	assert.Equal(t, int64(0), report.BytesFreed())
}

func TestDeleteRejectsRelativePath(t *testing.T) {
	report := NewExecutor(1).Delete(context.Background(), []*scan.Entry{
		{Path: "node_modules", Name: "node_modules", Dir: true},
	}, false)

	require.Len(t, report.Failures(), 1)
	assert.Contains(t, report.Failures()[0].Error(), "not absolute")
}

func TestDeleteOne(t *testing.T) {
	_, entries := makeTree(t)

	report := NewExecutor(1).DeleteOne(entries[0], false)
	assert.Equal(t, 1, report.Directories())
	assert.Equal(t, int64(2048), report.BytesFreed())

	_, err := os.Stat(entries[0].Path)
	assert.True(t, os.IsNotExist(err))
}
