// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator builds a complete report: it prepares the output
// tree, runs every enabled task concurrently behind a barrier, then
// assembles the index and cleans up.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bartekus/projreport/internal/config"
	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/index"
	"github.com/bartekus/projreport/internal/logging"
	"github.com/bartekus/projreport/internal/metrics"
	"github.com/bartekus/projreport/internal/runner"
	"github.com/bartekus/projreport/internal/scanner"
	"github.com/bartekus/projreport/internal/tasks"
)

// ErrUnsafeOutput is returned when deleting the output directory would
// delete the project itself.
var ErrUnsafeOutput = errors.New("output directory must not contain the project")

// CleanupExt is the extension of the byte-compiled files removed after a build.
const CleanupExt = "pyc"

const pycacheDir = "__pycache__"

// Summary is the outcome of one build.
type Summary struct {
	ProjectDir string
	OutputDir  string
	Started    time.Time
	Finished   time.Time
	Results    []runner.Result
	Index      *index.Summary // nil when the index is disabled or failed
	Removed    []string       // byte-compiled files deleted by cleanup
	Opened     bool
}

// Failed returns the IDs of failed tasks.
func (s *Summary) Failed() []string {
	var out []string
	for _, r := range s.Results {
		if r.Failed() {
			out = append(out, r.Task)
		}
	}
	return out
}

// Orchestrator runs builds for one configuration.
type Orchestrator struct {
	cfg     *config.Config
	exec    execrun.Runner
	logger  *slog.Logger
	metrics *metrics.Recorder
	tasks   []runner.Task
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExec replaces the shell used for every external command.
func WithExec(r execrun.Runner) Option { return func(o *Orchestrator) { o.exec = r } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

// WithMetrics records task and build metrics into m.
func WithMetrics(m *metrics.Recorder) Option { return func(o *Orchestrator) { o.metrics = m } }

// WithTasks replaces the task set derived from the configuration.
func WithTasks(t []runner.Task) Option { return func(o *Orchestrator) { o.tasks = t } }

// New returns an Orchestrator for cfg.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.OrDiscard(o.logger)
	if o.exec == nil {
		o.exec = execrun.NewShell(o.logger)
	}
	if o.tasks == nil {
		o.tasks = tasks.Build(cfg)
	}
	return o
}

// Build produces the report tree. Task failures are reported in the
// Summary; an error means the build could not run at all.
func (o *Orchestrator) Build(ctx context.Context) (*Summary, error) {
	project, err := filepath.Abs(o.cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("resolving project: %w", err)
	}
	out, err := filepath.Abs(o.cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("resolving output: %w", err)
	}

	sum := &Summary{ProjectDir: project, OutputDir: out, Started: o.now()}
	log := o.logger.With("project", project, "output", out)

	if err := o.prepareOutput(project, out); err != nil {
		return nil, err
	}

	// Discovery works on canonical paths; the report itself is never a source.
	realOut := out
	if resolved, err := filepath.EvalSymlinks(out); err == nil {
		realOut = resolved
	}
	ignore := append(append([]string(nil), o.cfg.Ignore...), realOut+string(filepath.Separator))
	deps := &runner.Deps{
		ProjectDir: project,
		OutputDir:  out,
		Scanner:    scanner.New(project, ignore, o.logger),
		Exec:       o.exec,
		Logger:     o.logger,
		Metrics:    o.metrics,
	}

	log.Info("dispatching tasks", "count", len(o.tasks))
	sum.Results = runner.NewRunner(deps).RunConcurrent(ctx, o.tasks)

	// Everything below runs after the barrier.
	if o.cfg.Enabled(config.FeatureIndex) {
		sum.Index = o.assembleIndex(project, out)
	}

	sum.Removed = o.cleanup(deps.Scanner, project)
	if o.metrics != nil {
		o.metrics.SetSourceFiles(tasks.SourceExt, len(deps.Scanner.Sources(tasks.SourceExt)))
	}

	sum.Finished = o.now()
	o.persist(sum)

	if !o.cfg.NoOpen && sum.Index != nil {
		page := filepath.Join(out, tasks.IndexPage)
		o.exec.Run(ctx, "", o.cfg.Tools.Open+" "+execrun.Quote(page))
		sum.Opened = true
	}

	log.Info("build finished", "failed", len(sum.Failed()), "duration", sum.Finished.Sub(sum.Started).Round(time.Millisecond))
	return sum, nil
}

// prepareOutput wipes the previous report unless deletion is disabled, then
// recreates the directories owned by the enabled tasks.
func (o *Orchestrator) prepareOutput(project, out string) error {
	if !o.cfg.NoDelete {
		if contains(out, project) {
			return fmt.Errorf("%w: %s", ErrUnsafeOutput, out)
		}
		if err := os.RemoveAll(out); err != nil {
			return fmt.Errorf("removing previous report: %w", err)
		}
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, t := range o.tasks {
		owner, ok := t.(tasks.OutputOwner)
		if !ok {
			continue
		}
		if err := os.MkdirAll(filepath.Join(out, owner.OutputDir()), 0o755); err != nil {
			return fmt.Errorf("creating output directory for %s: %w", t.ID(), err)
		}
	}
	return nil
}

func (o *Orchestrator) assembleIndex(project, out string) *index.Summary {
	if _, err := index.CopyLogo(project, out); err != nil {
		o.logger.Warn("could not copy logo", "err", err)
	}

	s, err := index.Assemble(out, index.Meta{
		Title:       filepath.Base(project),
		ArchiveName: tasks.ArchiveName(project),
	})
	if err != nil {
		o.logger.Error("could not write index", "err", err)
		return nil
	}
	return &s
}

// cleanup removes byte-compiled files left by the tools, then the
// __pycache__ directories they leave empty.
func (o *Orchestrator) cleanup(sc *scanner.Scanner, project string) []string {
	var removed []string
	for _, f := range sc.Fresh(CleanupExt) {
		if err := os.Remove(f); err != nil {
			o.logger.Debug("could not remove byte-compiled file", "path", f, "err", err)
			continue
		}
		removed = append(removed, f)
	}

	var caches []string
	_ = filepath.WalkDir(project, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != project {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() && d.Name() == pycacheDir && !scanner.Ignored(path+string(filepath.Separator), o.cfg.Ignore) {
			caches = append(caches, path)
			return fs.SkipDir
		}
		return nil
	})
	for _, dir := range caches {
		// Remove fails on non-empty directories, which is what we want.
		if err := os.Remove(dir); err == nil {
			o.logger.Debug("pruned empty cache directory", "path", dir)
		}
	}

	if len(removed) > 0 {
		o.logger.Info("removed byte-compiled files", "count", len(removed))
	}
	return removed
}

func (o *Orchestrator) persist(sum *Summary) {
	store := runner.NewStateStore(filepath.Join(sum.OutputDir, runner.StateDir))
	last := runner.NewLastRun(sum.ProjectDir, sum.OutputDir, sum.Started, sum.Finished, sum.Results)
	if err := store.WriteRun(last, sum.Results); err != nil {
		o.logger.Warn("could not record run state", "err", err)
	}

	if o.metrics == nil {
		return
	}
	o.metrics.FinishBuild(sum.Finished.Sub(sum.Started), sum.Finished)
	if o.cfg.MetricsFile != "" {
		if err := o.metrics.WriteTextfile(o.cfg.MetricsFile); err != nil {
			o.logger.Warn("could not write metrics", "path", o.cfg.MetricsFile, "err", err)
		}
	}
}

// contains reports whether dir is path or one of its ancestors.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
