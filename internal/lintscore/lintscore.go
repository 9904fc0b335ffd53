// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lintscore extracts the overall rating from pylint output.
package lintscore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Marker precedes the rating in pylint's report footer:
//
//	Your code has been rated at 7.50/10 (previous run: 7.00/10, +0.50)
const Marker = "code has been rated at "

var (
	ErrScoreNotFound  = errors.New("lint score not found")
	ErrMalformedScore = errors.New("malformed lint score")
)

// Score is a rating out of Max.
type Score struct {
	Value float64
	Max   float64
}

// Ratio returns Value/Max clamped to [0, 1]. pylint ratings can go negative.
func (s Score) Ratio() float64 {
	if s.Max <= 0 {
		return 0
	}
	r := s.Value / s.Max
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

func (s Score) String() string {
	return strconv.FormatFloat(s.Value, 'f', 2, 64) + "/" + strconv.FormatFloat(s.Max, 'f', -1, 64)
}

// Parse finds the first rating in text. The rating must follow Marker
// directly as "<value>/<max>".
func Parse(text string) (Score, error) {
	i := strings.Index(text, Marker)
	if i < 0 {
		return Score{}, ErrScoreNotFound
	}
	rest := text[i+len(Marker):]

	end := strings.IndexAny(rest, " \t\r\n(<")
	if end >= 0 {
		rest = rest[:end]
	}

	valueText, maxText, ok := strings.Cut(rest, "/")
	if !ok {
		return Score{}, fmt.Errorf("%w: %q", ErrMalformedScore, rest)
	}
	value, err := strconv.ParseFloat(valueText, 64)
	if err != nil {
		return Score{}, fmt.Errorf("%w: value %q", ErrMalformedScore, valueText)
	}
	maxValue, err := strconv.ParseFloat(maxText, 64)
	if err != nil || maxValue <= 0 {
		return Score{}, fmt.Errorf("%w: max %q", ErrMalformedScore, maxText)
	}

	return Score{Value: value, Max: maxValue}, nil
}
