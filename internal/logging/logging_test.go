// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "warn", Prefix: "projreport"})
	require.NoError(t, err)

	logger.Info("hidden message")
	logger.Warn("lint tool failed", "task", "lint")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "lint tool failed")
	assert.Contains(t, out, "projreport")
	assert.Contains(t, out, "task=lint")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: FormatJSON})
	require.NoError(t, err)

	logger.Debug("discovered sources", "count", 3)

	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "discovered sources", rec["msg"])
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	require.Error(t, err)

	_, err = New(&bytes.Buffer{}, Options{Format: "xml"})
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
