// Package config resolves the run configuration with strict precedence:
// environment variables beat the TOML config file, which beats the built-in
// defaults. Environment and file each fully replace the default list for a
// category they set; nothing is appended.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment variables, comma-separated lists for the pattern categories.
const (
	EnvDirs  = "RECLAIM_DIRS"
	EnvFiles = "RECLAIM_FILES"
	EnvDays  = "RECLAIM_DAYS"
)

// DefaultDirectories are the directory patterns removed out of the box.
var DefaultDirectories = []string{
	".terraform",
	"target",
	"node_modules",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".tox",
	".ruff_cache",
	"venv",
	".venv",
	".eggs",
	"*.egg-info",
	"dist",
	"build",
	".next",
	".nuxt",
	".turbo",
	".gradle",
	"coverage",
	".coverage",
	"htmlcov",
	".cache",
	".parcel-cache",
}

// DefaultFiles are the file patterns removed out of the box.
var DefaultFiles = []string{
	".pyc",
	".pyo",
	".pyd",
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	".swp",
	".swo",
	"~",
}

// File is the on-disk TOML shape:
//
//	days = 30
//
//	[patterns]
//	directories = ["node_modules"]
//	files = [".pyc"]
type File struct {
	Days     *int `toml:"days"`
	Patterns struct {
		Directories []string `toml:"directories"`
		Files       []string `toml:"files"`
	} `toml:"patterns"`
}

// Resolved is the immutable configuration handed to the core. No ambient
// globals: callers pass it by reference into the scanner and executor.
type Resolved struct {
	Directories []string
	Files       []string

	// Days filters matches by age; 0 means no filtering.
	Days int

	// Concurrency sizes the worker pool; 0 means available parallelism.
	Concurrency int
}

// Resolve merges defaults, the optional config file, and the environment.
// An empty path means no file layer. A file that exists but does not parse
// is an error; a missing explicit file is too.
func Resolve(path string) (*Resolved, error) {
	cfg := &Resolved{
		Directories: append([]string(nil), DefaultDirectories...),
		Files:       append([]string(nil), DefaultFiles...),
	}

	if path != "" {
		var f File
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if len(f.Patterns.Directories) > 0 {
			cfg.Directories = f.Patterns.Directories
		}
		if len(f.Patterns.Files) > 0 {
			cfg.Files = f.Patterns.Files
		}
		if f.Days != nil {
			cfg.Days = *f.Days
		}
	}

	if raw, ok := os.LookupEnv(EnvDirs); ok {
		cfg.Directories = splitList(raw)
	}
	if raw, ok := os.LookupEnv(EnvFiles); ok {
		cfg.Files = splitList(raw)
	}
	if raw, ok := os.LookupEnv(EnvDays); ok {
		days, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || days < 0 {
			return nil, fmt.Errorf("%s: invalid day count %q", EnvDays, raw)
		}
		cfg.Days = days
	}

	return cfg, nil
}

// DiscoverPath finds an implicit config file when none was given on the
// command line: .reclaim.toml in the scan root, then the XDG config dir,
// then ~/.config/reclaim/config.toml. Returns "" when none exists.
func DiscoverPath(root string) string {
	var candidates []string
	if root != "" {
		candidates = append(candidates, filepath.Join(root, ".reclaim.toml"))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "reclaim", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "reclaim", "config.toml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
