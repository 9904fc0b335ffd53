// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/projection"
	"github.com/bartekus/projreport/internal/runner"
	"github.com/bartekus/projreport/internal/scanner"
)

// Docs runs the documentation generator once per source file with docs/ as
// the working directory, so each page lands there as <module>.html.
type Docs struct {
	Tool string
}

func (t *Docs) ID() string        { return "docs" }
func (t *Docs) OutputDir() string { return DocsDir }

func (t *Docs) Run(ctx context.Context, deps *runner.Deps) runner.Result {
	log := deps.Logger.With("task", t.ID())
	hintMissing(log, t.Tool)

	dir := filepath.Join(deps.OutputDir, DocsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result(runner.StatusFail, fmt.Sprintf("creating %s: %v", DocsDir, err))
	}

	files := deps.Scanner.Sources(SourceExt)
	if len(files) == 0 {
		return result(runner.StatusSkip, "no ."+SourceExt+" files found")
	}

	var outputs []string
	for _, link := range pageNames(files) {
		page, ok := t.document(ctx, deps, dir, link)
		if ok {
			outputs = append(outputs, filepath.Join(DocsDir, page))
		} else {
			log.Warn("no documentation produced", "file", link.Path)
		}
	}

	note := fmt.Sprintf("%d of %d files documented", len(outputs), len(files))
	if len(outputs) == 0 {
		return result(runner.StatusFail, note)
	}
	return result(runner.StatusPass, note, outputs...)
}

// document generates the page for one source file. The generator always
// names its output <stem>.html, so a file whose stem is already taken is
// documented in a scratch directory and moved to its unique page name.
func (t *Docs) document(ctx context.Context, deps *runner.Deps, dir string, link pageLink) (string, bool) {
	log := deps.Logger.With("task", t.ID(), "file", link.Path)
	natural := scanner.Stem(link.Path) + ".html"

	workDir := dir
	if link.Page != natural {
		staged, err := os.MkdirTemp(dir, ".stage-*")
		if err != nil {
			log.Warn("could not create scratch directory", "err", err)
			return "", false
		}
		defer os.RemoveAll(staged)
		workDir = staged
	}

	produced := filepath.Join(workDir, natural)
	deps.Exec.Run(ctx, workDir, t.Tool+" "+execrun.Quote(link.Path))
	if !projection.Exists(produced) {
		// Some files only document as an importable module name.
		log.Debug("retrying in module form")
		deps.Exec.Run(ctx, workDir, t.moduleForm(link.Path))
	}
	if !projection.Exists(produced) {
		return "", false
	}

	if workDir != dir {
		if err := os.Rename(produced, filepath.Join(dir, link.Page)); err != nil {
			log.Warn("could not move page", "page", link.Page, "err", err)
			return "", false
		}
	}
	return link.Page, true
}

// moduleForm names the file by its module name, importable from its own
// directory.
func (t *Docs) moduleForm(file string) string {
	module := strings.TrimSuffix(filepath.Base(file), "."+SourceExt)
	return "PYTHONPATH=" + execrun.Quote(filepath.Dir(file)) + " " + t.Tool + " " + execrun.Quote(module)
}
