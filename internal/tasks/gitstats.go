// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/projection"
	"github.com/bartekus/projreport/internal/runner"
)

// GitStats generates the repository statistics site into webstats/.
type GitStats struct {
	Tool      string
	Processes int
}

func (t *GitStats) ID() string        { return "gitstats" }
func (t *GitStats) OutputDir() string { return WebStatsDir }

func (t *GitStats) Run(ctx context.Context, deps *runner.Deps) runner.Result {
	hintMissing(deps.Logger.With("task", t.ID()), t.Tool)

	dir := filepath.Join(deps.OutputDir, WebStatsDir)
	deps.Exec.Run(ctx, deps.ProjectDir, t.command(deps.ProjectDir, dir))

	index := filepath.Join(dir, IndexPage)
	if !projection.Exists(index) {
		return result(runner.StatusFail, "no statistics site produced")
	}
	return result(runner.StatusPass, "", filepath.Join(WebStatsDir, IndexPage))
}

func (t *GitStats) command(project, dir string) string {
	return t.Tool + " -c processes=" + strconv.Itoa(t.Processes) + " " + execrun.Quote(project) + " " + execrun.Quote(dir)
}
