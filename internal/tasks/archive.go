// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"

	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/runner"
)

// Archive snapshots the project into <name>.7z, leaving the report
// directory out.
type Archive struct {
	Tool string
}

func (t *Archive) ID() string { return "archive" }

func (t *Archive) Run(ctx context.Context, deps *runner.Deps) runner.Result {
	log := deps.Logger.With("task", t.ID())
	hintMissing(log, t.Tool)

	name := ArchiveName(deps.ProjectDir)
	target := filepath.Join(deps.OutputDir, name)

	// "7z a" adds to an existing archive; a report keeps only the latest snapshot.
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("could not remove previous archive", "path", target, "err", err)
	}

	deps.Exec.Run(ctx, deps.ProjectDir, t.command(deps.ProjectDir, target, deps.OutputDir))

	info, err := os.Stat(target)
	if err != nil {
		return result(runner.StatusFail, "no archive produced")
	}
	return result(runner.StatusPass, humanize.IBytes(uint64(info.Size())), name)
}

func (t *Archive) command(project, target, outputDir string) string {
	return t.Tool + " " + execrun.Quote(target) + " " + execrun.Quote(project) +
		" " + execrun.Quote("-xr!"+filepath.Base(outputDir))
}
