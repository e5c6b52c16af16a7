// Package pattern classifies directory and file names against the
// configured artifact patterns.
//
// Directory patterns match by exact name or by a restricted glob where '*'
// is a single-segment wildcard (e.g. "*.egg-info"). File patterns match by
// glob when they contain a metacharacter, otherwise by suffix, which covers
// both the ".ext" extension shorthand and bare suffixes like "~".
//
// Matching is case-sensitive except on darwin and windows, whose default
// filesystems are case-insensitive.
package pattern

import (
	"path"
	"runtime"
	"strings"
)

// Kind distinguishes directory entries from file entries.
type Kind int

const (
	KindDir Kind = iota
	KindFile
)

// Reason records why an entry was classified as a deletion candidate.
type Reason struct {
	// Pattern is the pattern text that matched; empty when no pattern
	// matched and the entry is retained only as an ancestor.
	Pattern string
	Kind    Kind
}

// None reports whether the entry matched no pattern.
func (r Reason) None() bool { return r.Pattern == "" }

// Set holds the resolved directory and file patterns for a run.
type Set struct {
	dirs       []string
	files      []string
	foldCase   bool
	dirExact   map[string]struct{}
	dirGlobs   []string
	fileGlobs  []string
	fileSuffix []string
}

// New builds a Set from resolved pattern lists. The lists are assumed to be
// fully merged already (env over config file over defaults).
func New(dirs, files []string) *Set {
	return newSet(dirs, files, runtime.GOOS == "darwin" || runtime.GOOS == "windows")
}

func newSet(dirs, files []string, foldCase bool) *Set {
	s := &Set{
		dirs:     dirs,
		files:    files,
		foldCase: foldCase,
		dirExact: make(map[string]struct{}, len(dirs)),
	}
	for _, p := range dirs {
		p = s.fold(p)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			s.dirGlobs = append(s.dirGlobs, p)
		} else {
			s.dirExact[p] = struct{}{}
		}
	}
	for _, p := range files {
		p = s.fold(p)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			s.fileGlobs = append(s.fileGlobs, p)
		} else {
			s.fileSuffix = append(s.fileSuffix, p)
		}
	}
	return s
}

func (s *Set) fold(name string) string {
	if s.foldCase {
		return strings.ToLower(name)
	}
	return name
}

// Classify returns the match reason for a base name, or a zero Reason when
// nothing matches.
func (s *Set) Classify(name string, kind Kind) Reason {
	name = s.fold(name)
	if kind == KindDir {
		if _, ok := s.dirExact[name]; ok {
			return Reason{Pattern: name, Kind: KindDir}
		}
		for _, g := range s.dirGlobs {
			if ok, err := path.Match(g, name); err == nil && ok {
				return Reason{Pattern: g, Kind: KindDir}
			}
		}
		return Reason{}
	}
	for _, suffix := range s.fileSuffix {
		if strings.HasSuffix(name, suffix) {
			return Reason{Pattern: suffix, Kind: KindFile}
		}
	}
	for _, g := range s.fileGlobs {
		if ok, err := path.Match(g, name); err == nil && ok {
			return Reason{Pattern: g, Kind: KindFile}
		}
	}
	return Reason{}
}

// DirectoryPatterns returns the configured directory patterns for display.
func (s *Set) DirectoryPatterns() []string { return s.dirs }

// FilePatterns returns the configured file patterns for display.
func (s *Set) FilePatterns() []string { return s.files }
