package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelWarn, &buf)

	logger.Info("hidden")
	logger.Warn("stream disconnected", "landlord_id", "landlord-1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "stream disconnected")
	assert.Contains(t, out, "landlord_id=landlord-1")
	assert.Regexp(t, `time=\d{2}:\d{2}:\d{2}\.\d{3}`, out)
}

func TestOpen_NoPathDiscards(t *testing.T) {
	logger, closeFn, err := Open("", "debug")
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
	assert.NoError(t, closeFn())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedboard.log")

	logger, closeFn, err := Open(path, "info")
	require.NoError(t, err)
	logger.Info("stream opened")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stream opened")
}

func TestOpen_BadLevel(t *testing.T) {
	_, _, err := Open("", "loud")
	assert.Error(t, err)
}
