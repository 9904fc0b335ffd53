// SPDX-License-Identifier: AGPL-3.0-or-later

/*
projreport - builds a static HTML report about a source project: lint
results, API docs, execution traces, commit history, repository statistics,
a history video and a downloadable snapshot, tied together by one index page.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bartekus/projreport/cmd/projreport/internal/clierr"
	"github.com/bartekus/projreport/internal/config"
	"github.com/bartekus/projreport/internal/logging"
)

const logPrefix = "projreport"

// NewRootCmd constructs the projreport root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("PROJREPORT_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "projreport",
		Short:         "projreport - static HTML reports for source projects",
		Long:          "projreport runs linters, doc generators, tracers and git tooling over a project and assembles the results into one browsable report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "invalid arguments", err)
	})

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "enable verbose output")
	pf.String("config", "", "config file (default: projreport.yaml in the project or working directory)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.Bool("no-color", false, "disable colored output")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of projreport",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "projreport version %s\n", version)
		},
	})

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// addProjectFlags registers the flags every project-aware command shares.
func addProjectFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("project", "p", "", "project directory (default: enclosing git work tree)")
	f.StringP("output", "o", config.DefaultOutput, "report output directory")
	f.StringSliceP("ignore", "i", nil, "skip source paths containing this substring (repeatable)")
}

// loadConfig resolves configuration for cmd. Any problem is a usage error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: file,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, clierr.Usage(err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg. --verbose forces debug.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Log.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Prefix: logPrefix,
	})
	if err != nil {
		return nil, clierr.Usage(err)
	}
	return logger, nil
}

// setup loads configuration and the logger in one step.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
