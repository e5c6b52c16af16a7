// Package protect resolves the set of paths that must never be scanned into
// or deleted, regardless of pattern matches: credential stores, user
// configuration, and toolchain caches that happen to share names with build
// artifacts.
package protect

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Relative to the user's home directory.
var protectedHomeRoots = []string{
	".ssh",
	".gnupg",
	".aws",
	".azure",
	".kube",
	".docker",
	".config",
	".local/share",
	".rustup",
	"go/pkg",
}

// Oracle answers protection queries against a set of absolute roots resolved
// once at process start. It is immutable after construction.
type Oracle struct {
	roots []string
}

// New resolves the protected roots for the current user. On macOS the Docker
// Desktop container is included as well: its sparse disk image reports sizes
// that do not correspond to reclaimable space.
func New() *Oracle {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Oracle{}
	}
	return newOracle(home, runtime.GOOS)
}

func newOracle(home, goos string) *Oracle {
	o := &Oracle{}
	if home == "" {
		return o
	}
	for _, rel := range protectedHomeRoots {
		o.roots = append(o.roots, filepath.Join(home, filepath.FromSlash(rel)))
	}
	if goos == "darwin" {
		o.roots = append(o.roots, filepath.Join(home, "Library", "Containers", "com.docker.docker"))
	}
	return o
}

// IsProtected reports whether abs falls under any protected root. The root
// itself counts as protected.
func (o *Oracle) IsProtected(abs string) bool {
	for _, root := range o.roots {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Roots returns the resolved protected roots for display.
func (o *Oracle) Roots() []string { return o.roots }
