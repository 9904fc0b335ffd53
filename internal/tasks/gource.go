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

// Gource pipes the history visualization into a video encoder. When the
// primary encoder leaves no video behind, the fallback encoder is tried.
type Gource struct {
	Tool            string
	Encoder         string
	FallbackEncoder string
}

func (t *Gource) ID() string { return "gource" }

func (t *Gource) Run(ctx context.Context, deps *runner.Deps) runner.Result {
	log := deps.Logger.With("task", t.ID())
	hintMissing(log, t.Tool)

	video := filepath.Join(deps.OutputDir, VideoFile)
	if err := os.Remove(video); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("could not remove previous video", "path", video, "err", err)
	}

	deps.Exec.Run(ctx, deps.ProjectDir, t.pipeline(t.Encoder, video))
	if !hasContent(video) && t.FallbackEncoder != "" {
		log.Info("no video from primary encoder; trying fallback", "encoder", t.FallbackEncoder)
		deps.Exec.Run(ctx, deps.ProjectDir, t.pipeline(t.FallbackEncoder, video))
	}

	info, err := os.Stat(video)
	if err != nil || info.Size() == 0 {
		return result(runner.StatusFail, "no video produced")
	}
	return result(runner.StatusPass, humanize.IBytes(uint64(info.Size())), VideoFile)
}

func (t *Gource) pipeline(encoder, video string) string {
	return t.Tool + " | " + encoder + " " + execrun.Quote(video)
}

func hasContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
