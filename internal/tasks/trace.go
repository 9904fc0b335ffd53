// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/projection"
	"github.com/bartekus/projreport/internal/runner"
)

// Trace profiles each target and draws its call graph.
type Trace struct {
	Targets   []string
	Depth     int
	Sort      string
	Profile   string
	Callgraph string
}

func (t *Trace) ID() string        { return "trace" }
func (t *Trace) OutputDir() string { return TraceDir }

type traceView struct {
	Targets []pageLink
	Name    string
	Path    string
	Image   string
	Profile string
}

func (t *Trace) Run(ctx context.Context, deps *runner.Deps) runner.Result {
	log := deps.Logger.With("task", t.ID())
	if len(t.Targets) == 0 {
		return result(runner.StatusSkip, "no trace targets configured")
	}
	hintMissing(log, t.Profile)
	hintMissing(log, t.Callgraph)

	tmpl, err := getTemplates()
	if err != nil {
		return result(runner.StatusFail, err.Error())
	}

	targets := make([]string, len(t.Targets))
	for i, target := range t.Targets {
		if !filepath.IsAbs(target) {
			target = filepath.Join(deps.ProjectDir, target)
		}
		targets[i] = target
	}
	links := pageNames(targets)
	dir := filepath.Join(deps.OutputDir, TraceDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result(runner.StatusFail, fmt.Sprintf("creating %s: %v", TraceDir, err))
	}

	var outputs []string
	profiled := 0
	for _, link := range links {
		image := strings.TrimSuffix(link.Page, ".html") + ".png"

		profile := deps.Exec.Run(ctx, deps.ProjectDir, t.profileCommand(link.Path))
		deps.Exec.Run(ctx, deps.ProjectDir, t.callgraphCommand(link.Path, filepath.Join(dir, image)))

		view := traceView{Name: link.Name, Path: link.Path, Profile: strings.TrimRight(profile, "\n")}
		if projection.Exists(filepath.Join(dir, image)) {
			view.Image = image
			outputs = append(outputs, filepath.Join(TraceDir, image))
		}
		if strings.TrimSpace(profile) != "" {
			profiled++
		}

		if err := writeTracePage(tmpl, filepath.Join(dir, link.Page), "trace-file", "Trace: "+link.Name, IndexPage, view); err != nil {
			return result(runner.StatusFail, err.Error(), outputs...)
		}
		outputs = append(outputs, filepath.Join(TraceDir, link.Page))
	}

	if err := writeTracePage(tmpl, filepath.Join(dir, IndexPage), "trace-index", "Trace", "../"+IndexPage, traceView{Targets: links}); err != nil {
		return result(runner.StatusFail, err.Error(), outputs...)
	}
	outputs = append(outputs, filepath.Join(TraceDir, IndexPage))

	note := fmt.Sprintf("%d of %d targets profiled", profiled, len(links))
	if profiled == 0 {
		return result(runner.StatusFail, note, outputs...)
	}
	return result(runner.StatusPass, note, outputs...)
}

func (t *Trace) profileCommand(target string) string {
	return t.Profile + " -s " + execrun.Quote(t.Sort) + " " + execrun.Quote(target)
}

func (t *Trace) callgraphCommand(target, image string) string {
	return t.Callgraph + " --max-depth " + strconv.Itoa(t.Depth) +
		" graphviz --output-file=" + execrun.Quote(image) + " -- " + execrun.Quote(target)
}

func writeTracePage(tmpl *template.Template, path, name, title, back string, view traceView) error {
	body, err := projection.Execute(tmpl, name, view)
	if err != nil {
		return err
	}
	return projection.WriteDocument(path, projection.Document{
		Title: title,
		Back:  &projection.Link{Href: back, Label: "Back"},
		Body:  body,
	})
}
