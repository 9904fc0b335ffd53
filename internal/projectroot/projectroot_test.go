// SPDX-License-Identifier: AGPL-3.0-or-later

package projectroot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "pkg", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	tests := []struct {
		name  string
		start string
	}{
		{"at root", root},
		{"nested", nested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find(tt.start)
			require.NoError(t, err)
			assert.Equal(t, root, got)
		})
	}
}

func TestFind_GitFileCounts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: ../main/.git/worktrees/x\n"), 0o644))

	got, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindOr(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	assert.Equal(t, root, FindOr(filepath.Join(root, "missing", ".."), "fallback"))

	// The temp dir may itself live inside a repository, so only the error
	// path is checked for an unrelated start.
	if _, err := Find(os.TempDir()); err != nil {
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "fallback", FindOr(os.TempDir(), "fallback"))
	}
}
