// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index assembles the landing page of a report from whatever the
// tasks left in the output tree. It must run after every task has finished:
// the presence of a file is what decides whether its section is linked.
package index

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	humanize "github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bartekus/projreport/internal/history"
	"github.com/bartekus/projreport/internal/lintscore"
	"github.com/bartekus/projreport/internal/projection"
	"github.com/bartekus/projreport/internal/tasks"
)

// LogoFile is the logo name in both the project and the report.
const LogoFile = "logo.png"

//go:embed templates/*.html
var templateFS embed.FS

var (
	indexTemplate *template.Template
	templateOnce  sync.Once
	errTemplate   error
)

func getTemplate() (*template.Template, error) {
	templateOnce.Do(func() {
		indexTemplate, errTemplate = template.ParseFS(templateFS, "templates/*.html")
		if errTemplate != nil {
			errTemplate = fmt.Errorf("parsing index template: %w", errTemplate)
		}
	})
	return indexTemplate, errTemplate
}

const indexCSS = `
ul.sections { list-style: none; padding: 0; }
ul.sections h2 { margin: 0.4em 0; }
img.logo { max-height: 160px; }
.echart-box { margin: 1em 0; }
`

// Meta describes the project the report is for.
type Meta struct {
	Title       string // page title, usually the project name
	ArchiveName string // "" when no archive is expected
}

// Link is a section link on the landing page.
type Link struct {
	Href  string
	Label string
}

// ArchiveLink is the download entry for the project snapshot.
type ArchiveLink struct {
	Href  string
	Name  string
	Size  string
	Bytes int64
}

// Summary reports what the landing page links to.
type Summary struct {
	Links   []Link
	Logo    bool
	Video   bool
	Score   *lintscore.Score
	Archive *ArchiveLink
}

type view struct {
	Links   []Link
	Logo    string
	Video   string
	Score   string
	Gauge   template.HTML
	Archive *ArchiveLink
}

// sections are checked in landing-page order.
var sections = []struct {
	label string
	href  string
	check string
}{
	{"WebStats", "webstats/index.html", "webstats/index.html"},
	{"Log", "log/" + history.IndexFile, "log/" + history.IndexFile},
	{"Docs", tasks.DocsDir + "/", tasks.DocsDir},
	{"Lint", "lint/index.html", "lint/index.html"},
	{"Trace", "trace/index.html", "trace/index.html"},
}

// Inspect looks at the output tree and reports what can be linked.
func Inspect(outDir string, meta Meta) Summary {
	var s Summary

	for _, sec := range sections {
		path := filepath.Join(outDir, filepath.FromSlash(sec.check))
		if sec.check == tasks.DocsDir {
			if !hasHTML(path) {
				continue
			}
		} else if !projection.Exists(path) {
			continue
		}
		s.Links = append(s.Links, Link{Href: sec.href, Label: sec.label})
	}

	s.Logo = projection.Exists(filepath.Join(outDir, LogoFile))
	s.Video = projection.Exists(filepath.Join(outDir, tasks.VideoFile))

	if data, err := os.ReadFile(filepath.Join(outDir, tasks.LintDir, tasks.IndexPage)); err == nil {
		if score, err := lintscore.Parse(string(data)); err == nil {
			s.Score = &score
		}
	}

	if meta.ArchiveName != "" {
		if info, err := os.Stat(filepath.Join(outDir, meta.ArchiveName)); err == nil && info.Mode().IsRegular() {
			s.Archive = &ArchiveLink{
				Href:  meta.ArchiveName,
				Name:  meta.ArchiveName,
				Size:  humanize.IBytes(uint64(info.Size())),
				Bytes: info.Size(),
			}
		}
	}

	return s
}

// Assemble writes <outDir>/index.html and returns what it linked.
func Assemble(outDir string, meta Meta) (Summary, error) {
	s := Inspect(outDir, meta)

	tmpl, err := getTemplate()
	if err != nil {
		return s, err
	}

	v := view{Links: s.Links, Archive: s.Archive}
	if s.Logo {
		v.Logo = LogoFile
	}
	if s.Video {
		v.Video = tasks.VideoFile
	}
	var scripts template.HTML
	if s.Score != nil {
		v.Score = s.Score.String()
		gauge, assets, err := renderGauge(*s.Score)
		if err != nil {
			return s, err
		}
		v.Gauge = gauge
		scripts = assets
	}

	body, err := projection.Execute(tmpl, "index", v)
	if err != nil {
		return s, err
	}

	doc := projection.Document{
		Title:    meta.Title,
		ExtraCSS: indexCSS,
		Body:     scripts + body,
	}
	if err := projection.WriteDocument(filepath.Join(outDir, tasks.IndexPage), doc); err != nil {
		return s, fmt.Errorf("writing index: %w", err)
	}
	return s, nil
}

// CopyLogo copies the project's logo.png into the report, when there is one.
func CopyLogo(projectDir, outDir string) (bool, error) {
	src, err := os.Open(filepath.Join(projectDir, LogoFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening logo: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return false, fmt.Errorf("reading logo: %w", err)
	}
	if err := projection.AtomicWrite(filepath.Join(outDir, LogoFile), data); err != nil {
		return false, err
	}
	return true, nil
}

func hasHTML(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	return err == nil && len(matches) > 0
}

// gaugeChartID is the element id of the lint gauge.
const gaugeChartID = "lintscore"

// renderGauge draws the score as an echarts gauge and returns the chart
// fragment plus the script tags it depends on.
func renderGauge(score lintscore.Score) (chart, assets template.HTML, err error) {
	g := charts.NewGauge()
	g.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: gaugeChartID,
			Width:   "420px",
			Height:  "320px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	g.AddSeries("Lint", []opts.GaugeData{{
		Name:  "score",
		Value: math.Round(score.Ratio()*1000) / 10,
	}})

	var buf bytes.Buffer
	if err := g.Render(&buf); err != nil {
		return "", "", fmt.Errorf("rendering lint gauge: %w", err)
	}

	page := buf.String()
	content := extractChartContent(page)
	//nolint:gosec // go-echarts output
	return template.HTML(content), template.HTML(extractScriptAssets(page)), nil
}

// extractChartContent keeps the chart container and its script from a
// full go-echarts page.
func extractChartContent(html string) string {
	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}
	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)
	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	const closing = `</style>`
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}
		j := strings.Index(content[i:], closing)
		if j == -1 {
			return content
		}
		content = content[:i] + content[i+j+len(closing):]
	}
}

// extractScriptAssets returns the <script src=...> tags of the page head.
func extractScriptAssets(html string) string {
	head := html
	if i := strings.Index(html, "<body"); i >= 0 {
		head = html[:i]
	}

	var b strings.Builder
	for {
		i := strings.Index(head, "<script src=")
		if i == -1 {
			break
		}
		j := strings.Index(head[i:], "</script>")
		if j == -1 {
			break
		}
		b.WriteString(head[i : i+j+len("</script>")])
		b.WriteString("\n")
		head = head[i+j:]
	}
	return b.String()
}
