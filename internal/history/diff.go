// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"
	"unicode/utf8"
)

// LineKind classifies one diff line for styling.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

// Class is the CSS class used for the kind.
func (k LineKind) Class() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "context"
	}
}

const nbsp = "\u00a0"

// ClassifyLine reports how a diff line is styled. A single leading '+' or '-'
// marks an added or removed line; a doubled marker ("++", "--") is context,
// which also covers the "+++"/"---" file headers. ok is false for lines of at
// most one character, which are not rendered at all.
func ClassifyLine(line string) (kind LineKind, ok bool) {
	if utf8.RuneCountInString(line) <= 1 {
		return Context, false
	}
	switch {
	case line[0] == '+' && line[1] != '+':
		return Added, true
	case line[0] == '-' && line[1] != '-':
		return Removed, true
	default:
		return Context, true
	}
}

// DiffLine is one rendered diff line.
type DiffLine struct {
	Kind LineKind
	Text string
}

// ParseDiff classifies every line of diff, dropping the ones ClassifyLine
// rejects, and converts whitespace so indentation survives HTML rendering.
func ParseDiff(diff string) []DiffLine {
	var lines []DiffLine
	for _, raw := range splitLines(diff) {
		kind, ok := ClassifyLine(raw)
		if !ok {
			continue
		}
		lines = append(lines, DiffLine{Kind: kind, Text: Preserve(raw)})
	}
	return lines
}

// StatLines returns the stat block with every line whose trimmed text equals
// the commit subject removed, since the subject is already the heading.
func StatLines(stat, subject string) []string {
	subject = strings.TrimSpace(subject)

	var lines []string
	for _, raw := range splitLines(stat) {
		if subject != "" && strings.TrimSpace(raw) == subject {
			continue
		}
		lines = append(lines, Preserve(raw))
	}
	return trimBlank(lines)
}

// Preserve replaces tabs with four non-breaking spaces and spaces with one.
func Preserve(s string) string {
	s = strings.ReplaceAll(s, "\t", strings.Repeat(nbsp, 4))
	return strings.ReplaceAll(s, " ", nbsp)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

func trimBlank(lines []string) []string {
	blank := func(s string) bool { return strings.Trim(s, nbsp) == "" }
	for len(lines) > 0 && blank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}
