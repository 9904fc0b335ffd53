// SPDX-License-Identifier: AGPL-3.0-or-later

package projection

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "out", "file.txt")

	require.NoError(t, AtomicWrite(target, []byte("hello world")))
	require.NoError(t, AtomicWrite(target, []byte("replaced")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRender_EscapesTitleAndKeepsBody(t *testing.T) {
	out, err := RenderBytes(Document{
		Title: "a <b> & c",
		Back:  &Link{Href: "../index.html", Label: "Back"},
		Body:  template.HTML(`<p class="x">body</p>`),
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>a &lt;b&gt; &amp; c</title>")
	assert.Contains(t, html, `<h3><a href="../index.html">Back</a></h3>`)
	assert.Contains(t, html, `<p class="x">body</p>`)
	assert.NotContains(t, html, "<script>")
}

func TestRender_WithoutBackLink(t *testing.T) {
	out, err := RenderBytes(Document{Title: "Index"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<h3>")
}

func TestExecute(t *testing.T) {
	tmpl := template.Must(template.New("frag").Parse(`<pre>{{.}}</pre>`))

	frag, err := Execute(tmpl, "frag", "x < y")
	require.NoError(t, err)
	assert.Equal(t, template.HTML("<pre>x &lt; y</pre>"), frag)

	_, err = Execute(tmpl, "missing", nil)
	assert.Error(t, err)
}

func TestWriteDocumentAndExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lint", "index.html")
	assert.False(t, Exists(path))

	require.NoError(t, WriteDocument(path, Document{Title: "Lint"}))
	assert.True(t, Exists(path))
}
