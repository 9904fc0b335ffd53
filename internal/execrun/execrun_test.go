// SPDX-License-Identifier: AGPL-3.0-or-later

package execrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_CapturesStdout(t *testing.T) {
	s := NewShell(nil)

	out := s.Run(context.Background(), "", "echo hello; echo world >&2")
	assert.Equal(t, "hello\n", out)
}

func TestShell_NonZeroExitReturnsPartialOutput(t *testing.T) {
	s := NewShell(nil)

	out := s.Run(context.Background(), "", "echo partial; exit 3")
	assert.Equal(t, "partial\n", out)
}

func TestShell_MissingExecutableIsNotFatal(t *testing.T) {
	s := NewShell(nil)

	out := s.Run(context.Background(), "", "projreport-no-such-tool --version")
	assert.Empty(t, out)
}

func TestShell_UnparsableCommandLine(t *testing.T) {
	s := NewShell(nil)

	assert.Empty(t, s.Run(context.Background(), "", "echo 'unterminated"))
}

func TestShell_RunsInDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o600))

	s := NewShell(nil)
	out := s.Run(context.Background(), dir, "echo *.txt")
	assert.Equal(t, "marker.txt\n", out)

	assert.Empty(t, s.Run(context.Background(), filepath.Join(dir, "missing"), "echo never"))
}

func TestShell_Pipeline(t *testing.T) {
	s := NewShell(nil)

	out := s.Run(context.Background(), "", "echo a b c | while read x y z; do echo $z$y$x; done")
	assert.Equal(t, "cba\n", out)
}

func TestQuote(t *testing.T) {
	s := NewShell(nil)

	tricky := "it's a $file; rm -rf x"
	out := s.Run(context.Background(), "", "echo "+Quote(tricky))
	assert.Equal(t, tricky+"\n", out)

	out = s.Run(context.Background(), "", "echo "+QuoteAll([]string{"a b", "c"}))
	assert.Equal(t, "a b c\n", out)
}

func TestFunc(t *testing.T) {
	var gotDir, gotCmd string
	r := Func(func(_ context.Context, dir, cmd string) string {
		gotDir, gotCmd = dir, cmd
		return "ok"
	})

	assert.Equal(t, "ok", r.Run(context.Background(), "/tmp", "true"))
	assert.Equal(t, "/tmp", gotDir)
	assert.Equal(t, "true", gotCmd)
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 4}
	_, _ = b.Write([]byte("abcdef"))
	assert.Equal(t, "cdef", b.String())
}

func TestAvailable(t *testing.T) {
	assert.False(t, Available(""))
	assert.False(t, Available("projreport-no-such-tool --flag"))
}
