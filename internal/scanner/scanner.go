// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scanner discovers source files under a project root.
package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bartekus/projreport/internal/logging"
)

// Find walks root and returns the canonical absolute paths of regular files
// whose final extension equals ext, minus any path containing an ignore
// substring. The result is sorted and free of duplicates.
//
// Find never fails: a missing root yields nil and unreadable subdirectories
// are skipped so the rest of the tree is still reported.
func Find(root, ext string, ignore []string) []string {
	return find(root, ext, ignore, logging.Discard())
}

func find(root, ext string, ignore []string, logger *slog.Logger) []string {
	abs, err := canonical(root)
	if err != nil {
		logger.Debug("discovery root unavailable", "root", root, "err", err)
		return nil
	}

	var candidates []string
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it (and its subtree), keep walking.
			logger.Debug("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() && path != abs {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		// The walk starts at a canonical root and does not descend through
		// symlinked directories, so only symlink entries need resolving.
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := canonical(path)
			if err != nil {
				return nil
			}
			if !within(abs, resolved) {
				logger.Debug("skipping symlink leaving the root", "path", path, "target", resolved)
				return nil
			}
			info, err := os.Stat(resolved)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
			path = resolved
		} else if !d.Type().IsRegular() {
			return nil
		}

		if Extension(path) == ext {
			candidates = append(candidates, path)
		}
		return nil
	})
	if walkErr != nil {
		logger.Debug("discovery walk stopped early", "root", abs, "err", walkErr)
	}

	return FilterFiles(candidates, FilterOptions{
		IgnoreSubstrings: ignore,
		Extension:        ext,
	})
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Scanner caches discovery results for one build. Lint, docs and cleanup ask
// for the same listings from different goroutines.
type Scanner struct {
	root   string
	ignore []string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string][]string
}

// New creates a Scanner for root with a fixed ignore list.
func New(root string, ignore []string, logger *slog.Logger) *Scanner {
	return &Scanner{
		root:   root,
		ignore: append([]string(nil), ignore...),
		logger: logging.OrDiscard(logger),
		cache:  make(map[string][]string),
	}
}

// Root returns the directory the scanner walks.
func (s *Scanner) Root() string { return s.root }

// Sources returns the files with extension ext, computing them once.
// Callers must not modify the returned slice.
func (s *Scanner) Sources(ext string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if files, ok := s.cache[ext]; ok {
		return files
	}

	files := find(s.root, ext, s.ignore, s.logger)
	s.logger.Debug("discovered sources", "ext", ext, "count", len(files))
	s.cache[ext] = files
	return files
}

// Fresh walks again, bypassing and replacing the cached listing. Cleanup uses
// it because byte-compiled files appear while tasks run.
func (s *Scanner) Fresh(ext string) []string {
	files := find(s.root, ext, s.ignore, s.logger)

	s.mu.Lock()
	s.cache[ext] = files
	s.mu.Unlock()

	return files
}
