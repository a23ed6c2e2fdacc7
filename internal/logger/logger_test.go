package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := New(Options{JSON: true, Output: &buf})
	require.NoError(t, err)

	log.Infow("loaded graph", "quads", 3)
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded graph", entry["msg"])
	assert.Equal(t, float64(3), entry["quads"])
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Output: &buf})
	require.NoError(t, err)

	log.Debugw("hidden")
	log.Infow("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNew_DebugLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := New(Options{Level: "DEBUG", Output: &buf})
	require.NoError(t, err)

	log.Debugw("visible", "column", "name")
	assert.True(t, strings.Contains(buf.String(), "visible"))
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}
