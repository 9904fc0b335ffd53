// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIContract(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, c := range []string{
		"build",
		"completion",
		"config",
		"discover",
		"help",
		"history",
		"status",
		"version",
	} {
		assert.Contains(t, out, c, "expected top-level command %q in root help", c)
	}
}

func TestBuildHelpListsFlags(t *testing.T) {
	out, err := execute(t, "build", "--help")
	require.NoError(t, err)

	for _, f := range []string{
		"--project", "--output", "--ignore", "--trace", "--trace-depth", "--trace-sort",
		"--no-delete", "--disable", "--no-open", "--strict", "--metrics-file", "--page-size",
		"--config", "--verbose", "--log-format",
	} {
		assert.Contains(t, out, f)
	}
	assert.Contains(t, out, "gitstats", "disable help lists the features")
}

func TestVersion(t *testing.T) {
	t.Setenv("PROJREPORT_VERSION", "1.2.3")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "projreport version 1.2.3\n", out)
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--no-color"))

	err := cmd.Execute()
	return stdout.String(), err
}
