package git

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter selects diff entries by include/exclude glob patterns.
// A nil *PathFilter matches everything.
type PathFilter struct {
	include []string
	exclude []string

	mu    sync.Mutex
	cache map[string]bool
}

// NewPathFilter validates the patterns and returns a filter, or nil when no
// patterns are given.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	return &PathFilter{
		include: include,
		exclude: exclude,
		cache:   make(map[string]bool),
	}, nil
}

// Match reports whether path passes the filters.
func (f *PathFilter) Match(path string) bool {
	if f == nil {
		return true
	}

	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.cache[path]; ok {
		return v
	}
	v := f.match(path)
	f.cache[path] = v
	return v
}

// MatchChange reports whether either side of a change passes the filters.
func (f *PathFilter) MatchChange(path, oldPath string) bool {
	if f.Match(path) {
		return true
	}
	return oldPath != "" && f.Match(oldPath)
}

func (f *PathFilter) match(path string) bool {
	// Check exclude patterns first
	for _, pattern := range f.exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return false
		}
	}

	// If no include patterns, accept all
	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}
