// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return *Default()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultTraceDepth, cfg.Trace.Depth)
	assert.Equal(t, DefaultTraceSort, cfg.Trace.Sort)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultLintTool, cfg.Tools.Lint)
	assert.Equal(t, []string{"/.git/"}, cfg.Ignore)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"unknown feature", func(c *Config) { c.Disable = []string{"lint", "bogus"} }, ErrUnknownFeature},
		{"every feature disabled", func(c *Config) {
			for _, f := range AllFeatures() {
				c.Disable = append(c.Disable, string(f))
			}
		}, nil},
		{"zero depth", func(c *Config) { c.Trace.Depth = 0 }, ErrInvalidDepth},
		{"bad sort", func(c *Config) { c.Trace.Sort = "random" }, ErrInvalidSortKey},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, ErrInvalidPageSize},
		{"zero processes", func(c *Config) { c.StatsProcesses = 0 }, ErrInvalidProcesses},
		{"empty output", func(c *Config) { c.Output = " " }, ErrEmptyOutput},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLog},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidLog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEnabledFeatures(t *testing.T) {
	cfg := validConfig()
	cfg.Disable = []string{"gource", " archive "}

	assert.False(t, cfg.Enabled(FeatureGource))
	assert.False(t, cfg.Enabled(FeatureArchive))
	assert.True(t, cfg.Enabled(FeatureLint))
	assert.Equal(t, []Feature{
		FeatureIndex, FeatureLint, FeatureDocs, FeatureTrace, FeatureGitLog, FeatureGitStats,
	}, cfg.EnabledFeatures())
}

func TestLoad_Defaults(t *testing.T) {
	dir := gitDir(t)

	cfg, err := Load(LoadOptions{WorkDir: dir})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Project)
	assert.Equal(t, filepath.Join(dir, "report"), cfg.Output)
	assert.Equal(t, DefaultStatsProcesses, cfg.StatsProcesses)
}

func TestLoad_Precedence(t *testing.T) {
	dir := gitDir(t)
	writeConfig(t, dir, `
output: from-file
page_size: 20
trace:
  depth: 3
  targets: [main.py]
tools:
  open: open
`)
	t.Setenv("PROJREPORT_PAGE_SIZE", "30")
	t.Setenv("PROJREPORT_TRACE_SORT", "tottime")

	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	flags.String("output", DefaultOutput, "")
	flags.Int("trace-depth", DefaultTraceDepth, "")
	flags.StringSlice("disable", nil, "")
	require.NoError(t, flags.Parse([]string{"--trace-depth", "7", "--disable", "gource,archive"}))

	cfg, err := Load(LoadOptions{WorkDir: dir, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "from-file"), cfg.Output, "unset flag must not override the file")
	assert.Equal(t, 30, cfg.PageSize, "env overrides file")
	assert.Equal(t, "tottime", cfg.Trace.Sort)
	assert.Equal(t, 7, cfg.Trace.Depth, "set flag overrides file")
	assert.Equal(t, []string{"main.py"}, cfg.Trace.Targets)
	assert.Equal(t, "open", cfg.Tools.Open)
	assert.Equal(t, DefaultLintTool, cfg.Tools.Lint)
	assert.Equal(t, []string{"gource", "archive"}, cfg.Disable)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := gitDir(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: true\n"), 0o644))

	cfg, err := Load(LoadOptions{WorkDir: dir, ConfigFile: path})
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
}

func TestLoad_Errors(t *testing.T) {
	dir := gitDir(t)

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(LoadOptions{WorkDir: dir, ConfigFile: filepath.Join(dir, "nope.yaml")})
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		writeConfig(t, dir, "disable: [everything]\n")
		_, err := Load(LoadOptions{WorkDir: dir})
		assert.ErrorIs(t, err, ErrUnknownFeature)
	})
}

func gitDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configName+".yaml"), []byte(content), 0o644))
}
