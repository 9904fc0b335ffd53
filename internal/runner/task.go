// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"context"
	"log/slog"

	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/metrics"
	"github.com/bartekus/projreport/internal/scanner"
)

// Deps are shared by every task of a build. Everything in it is safe for
// concurrent use.
type Deps struct {
	ProjectDir string
	OutputDir  string
	Scanner    *scanner.Scanner
	Exec       execrun.Runner
	Logger     *slog.Logger
	Metrics    *metrics.Recorder // optional
}

// Task produces one section of the report. A task writes only under the
// output subtree it owns and reports tool failures through its Result.
type Task interface {
	ID() string

	Run(ctx context.Context, deps *Deps) Result
}
