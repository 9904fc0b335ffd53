// SPDX-License-Identifier: AGPL-3.0-or-later

// Package golden compares command output against files under testdata/.
// Run tests with -update to rewrite them.
package golden

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var Update = flag.Bool("update", false, "update golden files")

// TestdataDir returns the testdata directory next to the calling test file.
func TestdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(1)
	require.True(t, ok, "runtime.Caller failed")
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// Assert compares got with testdata/<name>.golden, rewriting the file first
// when -update is set.
func Assert(t *testing.T, dir, name, got string) {
	t.Helper()
	if *Update {
		Write(t, dir, name, got)
	}
	want, ok := Read(t, dir, name)
	require.True(t, ok, "golden file %s.golden is missing; run with -update", name)
	assert.Equal(t, want, got)
}

// Read returns the golden content and whether the file exists.
func Read(t *testing.T, dir, name string) (string, bool) {
	t.Helper()
	safeName(t, name)

	data, err := os.ReadFile(filepath.Join(dir, name+".golden")) //nolint:gosec // testdata path controlled by test
	if os.IsNotExist(err) {
		return "", false
	}
	require.NoError(t, err)
	return string(data), true
}

func Write(t *testing.T, dir, name, content string) {
	t.Helper()
	safeName(t, name)

	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".golden"), []byte(content), 0o600))
}

func safeName(t *testing.T, name string) {
	t.Helper()
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		t.Fatalf("invalid golden name %q", name)
	}
}
