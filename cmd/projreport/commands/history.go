// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bartekus/projreport/cmd/projreport/internal/clierr"
	"github.com/bartekus/projreport/internal/config"
	"github.com/bartekus/projreport/internal/execrun"
	"github.com/bartekus/projreport/internal/history"
	"github.com/bartekus/projreport/internal/tasks"
)

// logSource builds the commit source for a project. Tests replace it.
var logSource = func(logger *slog.Logger, project string) history.LogSource {
	return history.NewGitSource(execrun.NewShell(logger), project)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Render only the commit history pages",
		Long:  "History renders the paginated commit log into <output>/log without touching the rest of the report.",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	addProjectFlags(cmd)
	cmd.Flags().Int("page-size", config.DefaultPageSize, "commits per history page")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	r := history.NewRenderer(logSource(logger, cfg.Project), filepath.Base(cfg.Project), logger)
	pages, err := r.Render(cmd.Context(), cfg.PageSize)
	if err != nil {
		return clierr.Wrap(clierr.CodeFailure, "rendering history", err)
	}

	out := cmd.OutOrStdout()
	if len(pages) == 0 {
		_, _ = fmt.Fprintln(out, "No commits found.")
		return nil
	}

	dir := filepath.Join(cfg.Output, tasks.LogDir)
	if err := history.WritePages(dir, pages); err != nil {
		return clierr.Wrap(clierr.CodeFailure, "writing history", err)
	}
	_, _ = fmt.Fprintf(out, "%d page(s) written to %s\n", len(pages), filepath.Join(dir, history.IndexFile))
	return nil
}
