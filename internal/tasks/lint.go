// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/projection"
	"github.com/bartekus/projreport/internal/runner"
)

const lintCSS = `pre.lint { white-space: pre-wrap; }`

// Lint runs the linter over the whole project for lint/index.html and once
// per source file for lint/<stem>.html.
type Lint struct {
	Tool string
}

func (t *Lint) ID() string        { return "lint" }
func (t *Lint) OutputDir() string { return LintDir }

type lintView struct {
	Files  []pageLink
	Path   string
	Output string
}

func (t *Lint) Run(ctx context.Context, deps *runner.Deps) runner.Result {
	log := deps.Logger.With("task", t.ID())
	hintMissing(log, t.Tool)

	tmpl, err := getTemplates()
	if err != nil {
		return result(runner.StatusFail, err.Error())
	}

	files := deps.Scanner.Sources(SourceExt)
	links := pageNames(files)
	dir := filepath.Join(deps.OutputDir, LintDir)

	var projectOutput string
	if len(files) > 0 {
		projectOutput = deps.Exec.Run(ctx, deps.ProjectDir, t.Tool+" "+execrun.QuoteAll(files))
	}

	outputs := []string{filepath.Join(LintDir, IndexPage)}
	if err := writeLintPage(tmpl, filepath.Join(dir, IndexPage), "lint-index", "../"+IndexPage,
		lintView{Files: links, Output: strings.TrimRight(projectOutput, "\n")}); err != nil {
		return result(runner.StatusFail, err.Error())
	}

	empty := 0
	for _, link := range links {
		out := deps.Exec.Run(ctx, deps.ProjectDir, t.Tool+" "+execrun.Quote(link.Path))
		if strings.TrimSpace(out) == "" {
			empty++
		}
		view := lintView{Files: links, Path: link.Path, Output: strings.TrimRight(out, "\n")}
		if err := writeLintPage(tmpl, filepath.Join(dir, link.Page), "lint-file", IndexPage, view); err != nil {
			return result(runner.StatusFail, err.Error(), outputs...)
		}
		outputs = append(outputs, filepath.Join(LintDir, link.Page))
	}

	switch {
	case len(files) == 0:
		return result(runner.StatusSkip, "no ."+SourceExt+" files found", outputs...)
	case strings.TrimSpace(projectOutput) == "":
		return result(runner.StatusFail, "linter produced no output", outputs...)
	}
	note := fmt.Sprintf("%d files linted", len(files))
	if empty > 0 {
		note += fmt.Sprintf(", %d without output", empty)
	}
	return result(runner.StatusPass, note, outputs...)
}

func writeLintPage(tmpl *template.Template, path, name, back string, view lintView) error {
	body, err := projection.Execute(tmpl, name, view)
	if err != nil {
		return err
	}
	title := "Lint"
	if view.Path != "" {
		title = "Lint: " + filepath.Base(view.Path)
	}
	return projection.WriteDocument(path, projection.Document{
		Title:    title,
		Back:     &projection.Link{Href: back, Label: "Back"},
		ExtraCSS: lintCSS,
		Body:     body,
	})
}
