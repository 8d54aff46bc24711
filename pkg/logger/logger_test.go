package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "FATAL", LevelFatal.String())
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(LevelWarn, &buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 3")
	assert.Contains(t, out, "[ERROR] shown 4")

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "system.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0644))

	t.Run("should truncate when not preserving", func(t *testing.T) {
		l, err := New(LevelInfo, path, false)
		require.NoError(t, err)
		l.mirror = nil
		l.Info("fresh")
		require.NoError(t, l.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "old line")
		assert.Contains(t, string(content), "[INFO] fresh")
	})

	t.Run("should append when preserving", func(t *testing.T) {
		l, err := New(LevelInfo, path, true)
		require.NoError(t, err)
		l.Info("second")
		require.NoError(t, l.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "[INFO] fresh")
		assert.Contains(t, string(content), "[INFO] second")
	})
}

func TestPackageLevelFunctions(t *testing.T) {
	prev := SetDefault(nil)
	defer SetDefault(prev)

	assert.NotPanics(t, func() {
		Debug("no logger yet")
		Warn("still none")
	})

	var buf bytes.Buffer
	SetDefault(NewWriter(LevelDebug, &buf))
	Warn("frame %q skipped", "x")
	assert.Contains(t, buf.String(), `[WARN] frame "x" skipped`)
}
