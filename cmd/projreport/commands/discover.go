// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/projreport/internal/scanner"
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover <ext>",
		Short: "List the project files a build would treat as sources",
		Example: "  projreport discover py\n" +
			"  projreport discover py --ignore vendor/",
		Args: cobra.ExactArgs(1),
		RunE: runDiscover,
	}
	addProjectFlags(cmd)
	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ext := strings.TrimPrefix(args[0], ".")
	ignore := append(append([]string(nil), cfg.Ignore...), reportPrefix(cfg.Output))

	out := cmd.OutOrStdout()
	for _, path := range scanner.New(cfg.Project, ignore, logger).Sources(ext) {
		_, _ = fmt.Fprintln(out, path)
	}
	return nil
}

// reportPrefix is the ignore entry that keeps the report out of discovery.
func reportPrefix(output string) string {
	dir, err := filepath.Abs(output)
	if err != nil {
		dir = output
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return dir + string(filepath.Separator)
}
