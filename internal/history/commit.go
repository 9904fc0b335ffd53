// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history renders the paginated commit log pages of a report.
package history

import (
	"context"
	"strings"
)

// Commit is one entry of the one-line log.
type Commit struct {
	Hash    string
	Subject string
}

// ID is the DOM id of the commit's detail block.
func (c Commit) ID() string {
	return "commit-" + c.Hash
}

// LogSource provides the raw history the renderer works from. Every method
// is best-effort and returns empty output when the data is unavailable.
type LogSource interface {
	// Commits returns the history newest first.
	Commits(ctx context.Context) []Commit
	// Stat returns the stat block for one commit.
	Stat(ctx context.Context, hash string) string
	// Diff returns the unified diff between the commit's parent and the commit.
	Diff(ctx context.Context, hash string) string
}

// ParseOneline parses `git log --oneline` output. Lines shorter than three
// characters are dropped; the hash is everything before the first space.
func ParseOneline(out string) []Commit {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 3 {
			continue
		}
		hash, subject, _ := strings.Cut(line, " ")
		commits = append(commits, Commit{Hash: hash, Subject: subject})
	}
	return commits
}
