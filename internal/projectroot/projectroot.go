// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projectroot locates the repository enclosing a directory.
package projectroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no enclosing directory contains .git.
var ErrNotFound = errors.New("no enclosing git repository")

// Find walks up from start and returns the first directory containing a
// .git entry. Worktrees and submodules use a .git file, so any entry type
// counts.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		if _, err := os.Lstat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: from %s", ErrNotFound, start)
		}
		dir = parent
	}
}

// FindOr is Find with a fallback for directories outside any repository.
func FindOr(start, fallback string) string {
	root, err := Find(start)
	if err != nil {
		return fallback
	}
	return root
}
