// SPDX-License-Identifier: AGPL-3.0-or-later

package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: base, want: CodeFailure},
		{name: "usage", err: Usage(base), want: CodeUsage},
		{name: "wrapped exit error", err: fmt.Errorf("outer: %w", New(CodeUsage, "bad flag")), want: CodeUsage},
		{name: "zero normalized", err: New(0, "zero"), want: CodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeOf(tt.err))
		})
	}
}

func TestWrap_Unwrap(t *testing.T) {
	base := errors.New("disk full")
	err := Wrap(CodeFailure, "writing index", base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "writing index: disk full", err.Error())
	assert.Equal(t, "no cause", Wrap(CodeUsage, "no cause", nil).Error())
}
