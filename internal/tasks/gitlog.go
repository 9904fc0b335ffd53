// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bartekus/projreport/internal/history"
	"github.com/bartekus/projreport/internal/runner"
)

// GitLog renders the paginated commit history into log/.
type GitLog struct {
	PageSize int

	// Source overrides the git-backed history, for tests.
	Source history.LogSource
}

func (t *GitLog) ID() string        { return "gitlog" }
func (t *GitLog) OutputDir() string { return LogDir }

func (t *GitLog) Run(ctx context.Context, deps *runner.Deps) runner.Result {
	log := deps.Logger.With("task", t.ID())

	src := t.Source
	if src == nil {
		hintMissing(log, "git")
		src = history.NewGitSource(deps.Exec, deps.ProjectDir)
	}

	renderer := history.NewRenderer(src, filepath.Base(deps.ProjectDir), log)
	pages, err := renderer.Render(ctx, t.PageSize)
	if err != nil {
		return result(runner.StatusFail, err.Error())
	}
	if deps.Metrics != nil {
		deps.Metrics.SetHistoryPages(len(pages))
	}
	if len(pages) == 0 {
		return result(runner.StatusSkip, "no commits found")
	}

	dir := filepath.Join(deps.OutputDir, LogDir)
	if err := history.WritePages(dir, pages); err != nil {
		return result(runner.StatusFail, err.Error())
	}

	outputs := []string{filepath.Join(LogDir, history.IndexFile)}
	commits := 0
	for _, p := range pages {
		outputs = append(outputs, filepath.Join(LogDir, p.FileName()))
		commits += len(p.Commits)
	}
	return result(runner.StatusPass, fmt.Sprintf("%d commits on %d pages", commits, len(pages)), outputs...)
}
