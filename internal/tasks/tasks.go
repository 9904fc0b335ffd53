// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks implements the report sections. Every task wraps an
// external tool through execrun, is best-effort, and writes only under the
// output path it owns.
package tasks

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/bartekus/projreport/internal/config"
	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/runner"
	"github.com/bartekus/projreport/internal/scanner"
)

// Output paths relative to the report root.
const (
	LintDir     = "lint"
	DocsDir     = "docs"
	TraceDir    = "trace"
	LogDir      = "log"
	WebStatsDir = "webstats"
	VideoFile   = "video.mp4"
	IndexPage   = "index.html"
)

// SourceExt is the extension of the sources lint, docs and cleanup work on.
const SourceExt = "py"

//go:embed templates/*.html
var templateFS embed.FS

var (
	pageTemplates *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		pageTemplates, errTemplates = template.ParseFS(templateFS, "templates/*.html")
		if errTemplates != nil {
			errTemplates = fmt.Errorf("parsing task templates: %w", errTemplates)
		}
	})
	return pageTemplates, errTemplates
}

// OutputOwner is implemented by tasks whose output is a directory. The
// orchestrator recreates those directories before dispatch.
type OutputOwner interface {
	OutputDir() string
}

// ArchiveName is the archive file name for a project directory.
func ArchiveName(projectDir string) string {
	return filepath.Base(filepath.Clean(projectDir)) + ".7z"
}

// Build returns the tasks for every enabled feature, in a fixed order.
// The index is not a task: it is assembled after the barrier.
func Build(cfg *config.Config) []runner.Task {
	var out []runner.Task
	for _, f := range cfg.EnabledFeatures() {
		switch f {
		case config.FeatureLint:
			out = append(out, &Lint{Tool: cfg.Tools.Lint})
		case config.FeatureDocs:
			out = append(out, &Docs{Tool: cfg.Tools.Docs})
		case config.FeatureTrace:
			out = append(out, &Trace{
				Targets:   cfg.Trace.Targets,
				Depth:     cfg.Trace.Depth,
				Sort:      cfg.Trace.Sort,
				Profile:   cfg.Tools.Profile,
				Callgraph: cfg.Tools.Callgraph,
			})
		case config.FeatureGitLog:
			out = append(out, &GitLog{PageSize: cfg.PageSize})
		case config.FeatureGitStats:
			out = append(out, &GitStats{Tool: cfg.Tools.Gitstats, Processes: cfg.StatsProcesses})
		case config.FeatureGource:
			out = append(out, &Gource{
				Tool:            cfg.Tools.Gource,
				Encoder:         cfg.Tools.Encoder,
				FallbackEncoder: cfg.Tools.FallbackEncoder,
			})
		case config.FeatureArchive:
			out = append(out, &Archive{Tool: cfg.Tools.Archive})
		}
	}
	return out
}

// hintMissing logs when a tool is not on PATH. It never gates the task:
// the tool may be a shell builtin or resolve through an alias.
func hintMissing(log *slog.Logger, tool string) {
	if !execrun.Available(tool) {
		log.Warn("tool not found on PATH; its section will be empty", "tool", tool)
	}
}

// pageLink is one entry of a file index.
type pageLink struct {
	Name string
	Page string
	Path string
}

// pageNames assigns each file a unique page name derived from its stem.
// Files sharing a stem get -2, -3, ... in discovery order.
func pageNames(files []string) []pageLink {
	used := make(map[string]int, len(files))
	links := make([]pageLink, 0, len(files))
	for _, f := range files {
		stem := scanner.Stem(f)
		name := stem
		if n := used[stem]; n > 0 {
			name = fmt.Sprintf("%s-%d", stem, n+1)
		}
		used[stem]++
		links = append(links, pageLink{Name: filepath.Base(f), Page: name + ".html", Path: f})
	}
	return links
}

func result(status runner.Status, note string, outputs ...string) runner.Result {
	return runner.Result{Status: status, Note: note, Outputs: outputs}
}
