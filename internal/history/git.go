// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"

	"github.com/bartekus/projreport/internal/execrun"
)

// GitSource reads history by running git in a project directory.
type GitSource struct {
	Runner execrun.Runner
	Dir    string
}

// NewGitSource returns a GitSource for dir.
func NewGitSource(runner execrun.Runner, dir string) *GitSource {
	return &GitSource{Runner: runner, Dir: dir}
}

func (g *GitSource) Commits(ctx context.Context) []Commit {
	return ParseOneline(g.Runner.Run(ctx, g.Dir, "git log --oneline --no-decorate --no-color"))
}

func (g *GitSource) Stat(ctx context.Context, hash string) string {
	return g.Runner.Run(ctx, g.Dir, "git show --stat --no-color "+execrun.Quote(hash))
}

// Diff of a root commit fails (it has no parent) and yields "".
func (g *GitSource) Diff(ctx context.Context, hash string) string {
	return g.Runner.Run(ctx, g.Dir, "git diff --no-color "+execrun.Quote(hash+"^")+" "+execrun.Quote(hash))
}
