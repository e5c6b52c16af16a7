package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaim-cli/reclaim/internal/pattern"
)

func matchedDir(path, name string, size int64, mod time.Time) *Entry {
	return &Entry{
		Path:    path,
		Name:    name,
		Dir:     true,
		Reason:  pattern.Reason{Pattern: name, Kind: pattern.KindDir},
		Size:    size,
		ModTime: mod,
	}
}

func TestFilterAgeRetainsOlderOnly(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	root := &Entry{Path: "/r", Name: "r", Dir: true, Children: []*Entry{
		{Path: "/r/a", Name: "a", Dir: true, Children: []*Entry{
			matchedDir("/r/a/node_modules", "node_modules", 100, now.AddDate(0, 0, -10)),
		}},
		{Path: "/r/b", Name: "b", Dir: true, Children: []*Entry{
			matchedDir("/r/b/node_modules", "node_modules", 200, now.AddDate(0, 0, -3)),
		}},
	}}

	out := FilterAge(root, 7, now)
	matches := out.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, "/r/a/node_modules", matches[0].Path)

	// The ancestor whose only match was dropped goes with it.
	assert.Len(t, out.Children, 1)
	assert.Equal(t, "/r/a", out.Children[0].Path)
	assert.Equal(t, int64(100), out.Size)
}

func TestFilterAgeBoundaryExcluded(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	exact := now.Add(-7 * 24 * time.Hour)
	root := &Entry{Path: "/r", Name: "r", Dir: true, Children: []*Entry{
		matchedDir("/r/node_modules", "node_modules", 100, exact),
	}}

	// Exactly at the threshold: strictly older is required.
	assert.Empty(t, FilterAge(root, 7, now).Matches())
}

func TestFilterAgeZeroModTimeKept(t *testing.T) {
	now := time.Now()
	root := &Entry{Path: "/r", Name: "r", Dir: true, Children: []*Entry{
		matchedDir("/r/node_modules", "node_modules", 100, time.Time{}),
	}}

	assert.Empty(t, FilterAge(root, 7, now).Matches())
}

func TestFilterAgeDisabled(t *testing.T) {
	now := time.Now()
	root := &Entry{Path: "/r", Name: "r", Dir: true, Children: []*Entry{
		matchedDir("/r/node_modules", "node_modules", 100, now),
	}}

	assert.Len(t, FilterAge(root, 0, now).Matches(), 1)
}

func TestFilterAgeKeepsProtected(t *testing.T) {
	now := time.Now()
	root := &Entry{Path: "/r", Name: "r", Dir: true, Children: []*Entry{
		{Path: "/r/.ssh", Name: ".ssh", Dir: true, Protected: true},
		matchedDir("/r/node_modules", "node_modules", 100, now.AddDate(0, 0, -30)),
	}}

	out := FilterAge(root, 7, now)
	require.Len(t, out.Children, 2)
	assert.Len(t, out.Matches(), 1)
}
