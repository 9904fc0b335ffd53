// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"sync"

	"github.com/bartekus/projreport/internal/logging"
	"github.com/bartekus/projreport/internal/projection"
)

// DefaultPageSize is the number of commits per history page.
const DefaultPageSize = 10

//go:embed templates/*.html
var templateFS embed.FS

var (
	pageTemplate *template.Template
	templateOnce sync.Once
	errTemplate  error
)

func getTemplate() (*template.Template, error) {
	templateOnce.Do(func() {
		pageTemplate, errTemplate = template.ParseFS(templateFS, "templates/*.html")
		if errTemplate != nil {
			errTemplate = fmt.Errorf("parsing history templates: %w", errTemplate)
		}
	})
	return pageTemplate, errTemplate
}

const pageCSS = `
.nav strong { padding: 0 0.2em; }
.commit { margin: 0.4em 0; }
.toggle { cursor: pointer; }
.detail { border-left: 3px solid #ddd; margin: 0.5em 0 1em; padding-left: 1em; }
.added { color: #22863a; background: #f0fff4; }
.removed { color: #b31d28; background: #ffeef0; }
.context { color: #586069; }
`

const toggleScript = `function toggle(id) {
  var el = document.getElementById(id);
  el.style.display = el.style.display === "none" ? "block" : "none";
}`

// Page is one rendered history page.
type Page struct {
	Number  int
	Commits []Commit
	HTML    []byte
}

// FileName is the page's file name inside the log directory.
func (p Page) FileName() string {
	return fmt.Sprintf("log%d.html", p.Number)
}

type commitView struct {
	Commit
	Stat []string
	Diff []DiffLine
}

type pageView struct {
	Number  int
	Pages   []int
	Commits []commitView
}

// Renderer turns a LogSource into paginated HTML pages.
type Renderer struct {
	source LogSource
	title  string
	logger *slog.Logger
}

// NewRenderer returns a Renderer whose pages are titled after project.
func NewRenderer(source LogSource, project string, logger *slog.Logger) *Renderer {
	return &Renderer{
		source: source,
		title:  project + " history",
		logger: logging.OrDiscard(logger),
	}
}

// Render returns ceil(n/pageSize) pages, newest commits first. A history
// with no commits yields no pages. pageSize <= 0 means DefaultPageSize.
func (r *Renderer) Render(ctx context.Context, pageSize int) ([]Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	commits := r.source.Commits(ctx)
	if len(commits) == 0 {
		r.logger.Info("no commits found; history skipped")
		return nil, nil
	}

	tmpl, err := getTemplate()
	if err != nil {
		return nil, err
	}

	pageCount := (len(commits) + pageSize - 1) / pageSize
	numbers := make([]int, pageCount)
	for i := range numbers {
		numbers[i] = i + 1
	}

	pages := make([]Page, 0, pageCount)
	for n := 1; n <= pageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := (n - 1) * pageSize
		end := min(start+pageSize, len(commits))
		chunk := commits[start:end]

		view := pageView{Number: n, Pages: numbers}
		for _, c := range chunk {
			view.Commits = append(view.Commits, commitView{
				Commit: c,
				Stat:   StatLines(r.source.Stat(ctx, c.Hash), c.Subject),
				Diff:   ParseDiff(r.source.Diff(ctx, c.Hash)),
			})
		}

		body, err := projection.Execute(tmpl, "page", view)
		if err != nil {
			return nil, err
		}
		html, err := projection.RenderBytes(projection.Document{
			Title:    r.title,
			Back:     &projection.Link{Href: "../index.html", Label: "Back"},
			ExtraCSS: template.CSS(pageCSS),
			Script:   template.JS(toggleScript),
			Body:     body,
		})
		if err != nil {
			return nil, fmt.Errorf("rendering history page %d: %w", n, err)
		}

		pages = append(pages, Page{Number: n, Commits: chunk, HTML: html})
		r.logger.Debug("rendered history page", "page", n, "commits", len(chunk))
	}

	return pages, nil
}
