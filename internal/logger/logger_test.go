package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	log.Infow("transition applied", "request_id", "vr-001")
	log.Debugw("dropped at info level")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `"msg":"transition applied"`)
	assert.Contains(t, out, `"request_id":"vr-001"`)
	assert.False(t, strings.Contains(out, "dropped at info level"))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}
