// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bartekus/projreport/cmd/projreport/internal/clierr"
	"github.com/bartekus/projreport/internal/config"
	"github.com/bartekus/projreport/internal/metrics"
	"github.com/bartekus/projreport/internal/orchestrator"
	"github.com/bartekus/projreport/internal/runner"
	"github.com/bartekus/projreport/internal/tasks"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the full project report",
		Long: "Build wipes the output directory, runs every enabled report task in parallel, " +
			"then writes the index page and removes byte-compiled files from the project.",
		Args: cobra.NoArgs,
		RunE: runBuild,
	}

	addProjectFlags(cmd)
	f := cmd.Flags()
	f.StringSliceP("trace", "t", nil, "script to profile and call-graph (repeatable)")
	f.Int("trace-depth", config.DefaultTraceDepth, "maximum call graph depth")
	f.String("trace-sort", config.DefaultTraceSort, "profiler sort key")
	f.Bool("no-delete", false, "keep the previous report instead of wiping it")
	f.StringSliceP("disable", "d", nil, "disable a report section: "+featureList()+" (repeatable)")
	f.Bool("no-open", false, "do not open the index in a browser")
	f.Bool("strict", false, "exit non-zero when any task fails")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile")
	f.Int("page-size", config.DefaultPageSize, "commits per history page")

	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	orch := orchestrator.New(cfg,
		orchestrator.WithLogger(logger),
		orchestrator.WithMetrics(metrics.New()),
	)
	sum, err := orch.Build(cmd.Context())
	if err != nil {
		if errors.Is(err, orchestrator.ErrUnsafeOutput) {
			return clierr.Usage(err)
		}
		return clierr.Wrap(clierr.CodeFailure, "build failed", err)
	}

	printSummary(cmd.OutOrStdout(), sum)

	if failed := sum.Failed(); cfg.Strict && len(failed) > 0 {
		return clierr.Newf(clierr.CodeFailure, "%d task(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

func printSummary(w io.Writer, sum *orchestrator.Summary) {
	for _, r := range sum.Results {
		statusColor(r.Status).Fprintf(w, "%-4s", strings.ToUpper(string(r.Status)))
		fmt.Fprintf(w, " %-9s %8s", r.Task, r.Duration.Round(time.Millisecond))
		if r.Note != "" {
			fmt.Fprintf(w, "  %s", r.Note)
		}
		fmt.Fprintln(w)
	}

	if len(sum.Removed) > 0 {
		fmt.Fprintf(w, "removed %d byte-compiled file(s)\n", len(sum.Removed))
	}
	if sum.Index != nil {
		fmt.Fprintf(w, "report: %s\n", filepath.Join(sum.OutputDir, tasks.IndexPage))
		if a := sum.Index.Archive; a != nil {
			fmt.Fprintf(w, "archive: %s (%s)\n", a.Name, a.Size)
		}
	}
}

func statusColor(s runner.Status) *color.Color {
	switch s {
	case runner.StatusPass:
		return color.New(color.FgGreen)
	case runner.StatusFail:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow)
	}
}

func featureList() string {
	features := config.AllFeatures()
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
