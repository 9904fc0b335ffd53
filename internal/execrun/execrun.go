// SPDX-License-Identifier: AGPL-3.0-or-later

// Package execrun is the single integration point with external tools.
//
// Every call is best-effort: a tool that is missing, exits non-zero, or
// cannot be parsed yields whatever it wrote to stdout (often nothing), and
// the caller renders an empty section instead of aborting the build.
package execrun

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/bartekus/projreport/internal/logging"
)

// stderrTail bounds how much stderr is kept for the debug log.
const stderrTail = 2048

// Runner runs a command line and returns its captured stdout.
type Runner interface {
	Run(ctx context.Context, dir, commandLine string) string
}

// Func adapts a plain function to Runner.
type Func func(ctx context.Context, dir, commandLine string) string

func (f Func) Run(ctx context.Context, dir, commandLine string) string {
	return f(ctx, dir, commandLine)
}

// Shell interprets command lines with an in-process POSIX shell, so pipes
// and redirections behave the same on hosts without /bin/sh.
type Shell struct {
	logger *slog.Logger
	env    []string
}

// NewShell returns a Shell that inherits the current process environment.
func NewShell(logger *slog.Logger) *Shell {
	return &Shell{
		logger: logging.OrDiscard(logger),
		env:    os.Environ(),
	}
}

// Run executes commandLine in dir ("" means the current directory). It blocks
// until the command exits and never adds a timeout of its own.
func (s *Shell) Run(ctx context.Context, dir, commandLine string) string {
	log := s.logger.With("cmd", commandLine)

	prog, err := syntax.NewParser().Parse(strings.NewReader(commandLine), "")
	if err != nil {
		log.Warn("could not parse command line", "err", err)
		return ""
	}

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: stderrTail}

	opts := []interp.RunnerOption{
		interp.StdIO(nil, &stdout, stderr),
		interp.Env(expand.ListEnviron(s.env...)),
	}
	if dir != "" {
		opts = append(opts, interp.Dir(dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		log.Warn("could not start command", "dir", dir, "err", err)
		return ""
	}

	log.Debug("running external command", "dir", dir)

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			log.Warn("external command exited non-zero", "status", int(status), "stderr", stderr.String())
		} else {
			log.Warn("external command failed", "err", err, "stderr", stderr.String())
		}
	}

	return stdout.String()
}

// Quote quotes s as a single shell word.
func Quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err == nil {
		return q
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteAll quotes each element and joins them with spaces.
func QuoteAll(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}

// Available reports whether the first word of a command prefix is on PATH.
func Available(commandPrefix string) bool {
	fields := strings.Fields(commandPrefix)
	if len(fields) == 0 {
		return false
	}
	_, err := exec.LookPath(fields[0])
	return err == nil
}

// tailBuffer keeps only the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
