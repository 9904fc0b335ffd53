// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

import (
	"path/filepath"
	"sort"
	"strings"
)

// FilterOptions defines criteria for including or excluding discovered files.
type FilterOptions struct {
	// IgnoreSubstrings drops any path containing one of these strings.
	// Matching is plain substring: "vendor/" drops "/proj/vendor/x.py"
	// but also "/proj/myvendor/x.py".
	IgnoreSubstrings []string

	// Extension keeps only files whose final extension equals it
	// (case-sensitive, no leading dot). Empty keeps everything.
	Extension string
}

// DefaultIgnore returns the ignore list applied when none is configured.
func DefaultIgnore() []string {
	return []string{
		"/.git/",
	}
}

// FilterFiles deduplicates paths, applies opts and returns the result sorted.
func FilterFiles(paths []string, opts FilterOptions) []string {
	if len(paths) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(paths))
	var filtered []string
	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		if opts.Extension != "" && Extension(path) != opts.Extension {
			continue
		}
		if Ignored(path, opts.IgnoreSubstrings) {
			continue
		}
		filtered = append(filtered, path)
	}

	sort.Strings(filtered)
	return filtered
}

// Extension returns the text after the last '.' of the base name, or "" when
// the base name has no dot.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return base[i+1:]
}

// Stem returns the base name without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Ignored reports whether path contains any non-empty ignore substring.
func Ignored(path string, ignore []string) bool {
	for _, s := range ignore {
		if s != "" && strings.Contains(path, s) {
			return true
		}
	}
	return false
}
