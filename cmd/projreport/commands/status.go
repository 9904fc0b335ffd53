// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bartekus/projreport/cmd/projreport/internal/clierr"
	"github.com/bartekus/projreport/internal/runner"
)

// statusReport is the --json shape of the status command.
type statusReport struct {
	LastRun *runner.LastRun `json:"last_run"`
	Tasks   []runner.Result `json:"tasks"`
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the result of the last build",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	addProjectFlags(cmd)
	cmd.Flags().Bool("json", false, "print the run state as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store := runner.NewStateStore(filepath.Join(cfg.Output, runner.StateDir))
	last, err := store.ReadLastRun()
	if err != nil {
		return clierr.Wrap(clierr.CodeFailure, "reading run state", err)
	}

	report := statusReport{LastRun: last, Tasks: []runner.Result{}}
	if last != nil {
		for _, id := range last.Tasks {
			res, err := store.ReadTask(id)
			if err != nil {
				return clierr.Wrap(clierr.CodeFailure, "reading run state", err)
			}
			if res != nil {
				report.Tasks = append(report.Tasks, *res)
			}
		}
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if last == nil {
		_, _ = fmt.Fprintln(out, "No run state found.")
		return nil
	}
	printStatus(out, report)
	return nil
}

func printStatus(w io.Writer, report statusReport) {
	last := report.LastRun
	fmt.Fprintf(w, "Project:  %s\n", last.Project)
	fmt.Fprintf(w, "Output:   %s\n", last.Output)
	fmt.Fprintf(w, "Finished: %s (%s)\n", humanize.Time(last.Finished), last.Finished.Sub(last.Started).Round(time.Millisecond))
	fmt.Fprintf(w, "Status:   %s\n", statusColor(runner.Status(last.Status)).Sprint(strings.ToUpper(last.Status)))
	fmt.Fprintln(w)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Task", "Status", "Duration", "Note"})
	for _, r := range report.Tasks {
		tw.AppendRow(table.Row{
			r.Task,
			statusColor(r.Status).Sprint(strings.ToUpper(string(r.Status))),
			r.Duration.Round(time.Millisecond),
			r.Note,
		})
	}
	if len(last.Failed) > 0 {
		tw.AppendFooter(table.Row{"", "", "failed", strings.Join(last.Failed, ", ")})
	}
	fmt.Fprintln(w, tw.Render())
}
