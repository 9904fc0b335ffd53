// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projection writes report pages: the shared HTML chrome every page
// is wrapped in, and atomic file replacement so a reader never sees a
// half-written page.
package projection

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		templates, errTemplates = template.ParseFS(templateFS, "templates/*.html")
		if errTemplates != nil {
			errTemplates = fmt.Errorf("parsing templates: %w", errTemplates)
		}
	})
	return templates, errTemplates
}

// Link is a navigation link.
type Link struct {
	Href  string
	Label string
}

// Document is one report page.
type Document struct {
	Title    string
	Back     *Link // rendered as the top "Back" heading when set
	ExtraCSS template.CSS
	Script   template.JS
	Body     template.HTML
}

// Render writes doc wrapped in the shared chrome.
func Render(w io.Writer, doc Document) error {
	tmpl, err := getTemplates()
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(w, "document.html", doc); err != nil {
		return fmt.Errorf("executing document template: %w", err)
	}
	return nil
}

// RenderBytes renders doc into memory.
func RenderBytes(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDocument renders doc and atomically writes it to path.
func WriteDocument(path string, doc Document) error {
	content, err := RenderBytes(doc)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(path), err)
	}
	return AtomicWrite(path, content)
}

// Execute renders a named template from tmpl into an HTML fragment.
// Packages with their own page bodies use it to build Document.Body.
func Execute(tmpl *template.Template, name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template
}

// AtomicWrite writes content to path atomically by writing to a temp file and renaming it.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".projreport-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	// CreateTemp uses 0600; report pages are meant to be served.
	if err := os.Chmod(tmpFile.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}

	return nil
}

// Exists reports whether path exists. Index assembly keys every link on it.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
