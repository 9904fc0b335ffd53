// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bartekus/projreport/cmd/projreport/internal/clierr"
	"github.com/bartekus/projreport/internal/config"
	"github.com/bartekus/projreport/internal/history"
)

// allButIndex disables every task so a build runs no external tools.
const allButIndex = "lint,docs,trace,gitlog,gitstats,gource,archive"

func TestBuild_IndexOnly(t *testing.T) {
	project := projectDir(t)
	out := filepath.Join(project, "report")

	stdout, err := execute(t, "build", "-p", project, "-o", out, "--no-open", "-d", allButIndex)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "run", "last-run.json"))
	assert.Contains(t, stdout, "report: "+filepath.Join(out, "index.html"))
}

func TestBuild_StrictFailsOnFailedTask(t *testing.T) {
	project := projectDir(t)
	out := filepath.Join(project, "report")
	// "true" produces no statistics site, so the gitstats task fails.
	writeFile(t, project, "projreport.yaml", "tools:\n  gitstats: \"true\"\n")
	args := []string{"build", "-p", project, "-o", out, "--no-open", "-d", "lint,docs,trace,gitlog,gource,archive"}

	stdout, err := execute(t, args...)
	require.NoError(t, err, "failed tasks do not fail a normal build")
	assert.Contains(t, stdout, "FAIL")
	assert.Contains(t, stdout, "gitstats")

	_, err = execute(t, append(args, "--strict")...)
	require.Error(t, err)
	assert.Equal(t, clierr.CodeFailure, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "gitstats")
}

func TestBuild_ConfigErrorsAreUsageErrors(t *testing.T) {
	project := projectDir(t)
	out := filepath.Join(project, "report")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown disable target", []string{"-d", "bogus"}, config.ErrUnknownFeature},
		{"depth below one", []string{"--trace-depth", "0"}, config.ErrInvalidDepth},
		{"unknown sort key", []string{"--trace-sort", "sideways"}, config.ErrInvalidSortKey},
		{"unknown log format", []string{"--log-format", "xml"}, config.ErrInvalidLog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"build", "-p", project, "-o", out, "--no-open"}, tt.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))
		})
	}
	assert.NoDirExists(t, out, "rejected configuration must not touch the output")
}

func TestBuild_UnknownFlagIsUsageError(t *testing.T) {
	_, err := execute(t, "build", "--frobnicate")
	require.Error(t, err)
	assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))
}

func TestBuild_RefusesOutputContainingProject(t *testing.T) {
	project := projectDir(t)

	_, err := execute(t, "build", "-p", project, "-o", filepath.Dir(project), "--no-open", "-d", allButIndex)
	require.Error(t, err)
	assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))
	assert.DirExists(t, project)
}

func TestStatus(t *testing.T) {
	project := projectDir(t)
	out := filepath.Join(project, "report")

	writeFile(t, project, "projreport.yaml", "tools:\n  gitstats: \"true\"\n")

	stdout, err := execute(t, "status", "-p", project, "-o", out)
	require.NoError(t, err)
	assert.Equal(t, "No run state found.\n", stdout)

	_, err = execute(t, "build", "-p", project, "-o", out, "--no-open", "-d", "lint,docs,trace,gitlog,gource,archive")
	require.NoError(t, err)

	stdout, err = execute(t, "status", "-p", project, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Project:  "+project)
	assert.Contains(t, stdout, "gitstats")
	assert.Contains(t, stdout, "FAIL")

	stdout, err = execute(t, "status", "-p", project, "-o", out, "--json")
	require.NoError(t, err)

	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.NotNil(t, report.LastRun)
	assert.Equal(t, "fail", report.LastRun.Status)
	assert.Equal(t, []string{"gitstats"}, report.LastRun.Failed)
	require.Len(t, report.Tasks, 1)
	assert.Equal(t, "gitstats", report.Tasks[0].Task)
}

func TestDiscover(t *testing.T) {
	project := projectDir(t)
	out := filepath.Join(project, "report")
	writeFile(t, project, "pkg/a.py", "")
	writeFile(t, project, "vendor/b.py", "")
	writeFile(t, project, "report/c.py", "")
	writeFile(t, project, "notes.txt", "")

	stdout, err := execute(t, "discover", ".py", "-p", project, "-o", out, "-i", "vendor/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, "pkg", "a.py")+"\n", stdout)
}

func TestDiscover_RequiresExtension(t *testing.T) {
	_, err := execute(t, "discover")
	require.Error(t, err)
}

func TestHistory(t *testing.T) {
	project := projectDir(t)
	out := filepath.Join(project, "report")

	var commits []history.Commit
	for i := range 12 {
		commits = append(commits, history.Commit{Hash: fmt.Sprintf("c%06d", i), Subject: fmt.Sprintf("change %d", i)})
	}
	stubLogSource(t, staticLog(commits))

	stdout, err := execute(t, "history", "-p", project, "-o", out, "--page-size", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 page(s)")

	for _, name := range []string{"log.html", "log1.html", "log2.html", "log3.html"} {
		assert.FileExists(t, filepath.Join(out, "log", name))
	}
	assert.NoFileExists(t, filepath.Join(out, "log", "log4.html"))
}

func TestHistory_NoCommits(t *testing.T) {
	project := projectDir(t)
	out := filepath.Join(project, "report")
	stubLogSource(t, staticLog(nil))

	stdout, err := execute(t, "history", "-p", project, "-o", out)
	require.NoError(t, err)
	assert.Equal(t, "No commits found.\n", stdout)
	assert.NoDirExists(t, filepath.Join(out, "log"))
}

func TestConfigDump(t *testing.T) {
	project := projectDir(t)
	writeFile(t, project, "projreport.yaml", "page_size: 25\ntrace:\n  sort: tottime\n")

	stdout, err := execute(t, "config", "-p", project, "-o", filepath.Join(project, "out"))
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, project, cfg.Project)
	assert.Equal(t, filepath.Join(project, "out"), cfg.Output)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "tottime", cfg.Trace.Sort)
	assert.Equal(t, config.DefaultTraceDepth, cfg.Trace.Depth)
	assert.Equal(t, config.DefaultArchiveTool, cfg.Tools.Archive)
}

func TestConfigDump_MissingExplicitFile(t *testing.T) {
	project := projectDir(t)

	_, err := execute(t, "config", "-p", project, "--config", filepath.Join(project, "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, clierr.CodeUsage, clierr.ExitCodeOf(err))
}

type staticLog []history.Commit

func (s staticLog) Commits(context.Context) []history.Commit   { return s }
func (s staticLog) Stat(context.Context, string) string        { return "" }
func (s staticLog) Diff(_ context.Context, hash string) string { return "+" + hash }

func stubLogSource(t *testing.T, src history.LogSource) {
	t.Helper()
	prev := logSource
	logSource = func(*slog.Logger, string) history.LogSource { return src }
	t.Cleanup(func() { logSource = prev })
}

// projectDir returns a canonical temp project directory.
func projectDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	project := filepath.Join(dir, "demo")
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".git"), 0o755))
	return project
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
