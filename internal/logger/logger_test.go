package logger_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/mixgraph/internal/config"
	"github.com/alkime/mixgraph/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want slog.Level
	}{
		{name: "development", cfg: config.Config{Env: config.EnvDevelopment, LogLevel: "info"}, want: slog.LevelDebug},
		{name: "production info", cfg: config.Config{Env: config.EnvProduction, LogLevel: "info"}, want: slog.LevelInfo},
		{name: "production debug", cfg: config.Config{Env: config.EnvProduction, LogLevel: "debug"}, want: slog.LevelDebug},
		{name: "warn", cfg: config.Config{Env: config.EnvProduction, LogLevel: "warn"}, want: slog.LevelWarn},
		{name: "error", cfg: config.Config{Env: config.EnvProduction, LogLevel: "error"}, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.Level(&tt.cfg))
		})
	}
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := &config.Config{Env: config.EnvProduction, LogLevel: "info"}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		l := logger.Setup(cfg, &buf, logger.JSON)

		l.Debug("hidden")
		l.Info("enumerated", "devices", 2)

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"enumerated"`)
		assert.Contains(t, buf.String(), `"devices":2`)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger.Setup(cfg, &buf, logger.Text)

		slog.Info("enumerated", "devices", 2)
		assert.Contains(t, buf.String(), "msg=enumerated devices=2")
	})
}

func TestOutput(t *testing.T) {
	t.Run("discard without a file", func(t *testing.T) {
		w, closeFn, err := logger.Output(&config.Config{})
		require.NoError(t, err)
		assert.Equal(t, io.Discard, w)
		assert.NoError(t, closeFn())
	})

	t.Run("appends to the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mixgraph.log")

		w, closeFn, err := logger.Output(&config.Config{LogFile: path})
		require.NoError(t, err)

		_, err = io.WriteString(w, "line\n")
		require.NoError(t, err)
		require.NoError(t, closeFn())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "line\n", string(data))
	})

	t.Run("bad path", func(t *testing.T) {
		_, _, err := logger.Output(&config.Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
		assert.Error(t, err)
	})
}

func TestFormatFor(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, logger.JSON, logger.FormatFor(&buf))
	assert.False(t, logger.IsTerminal(&buf))

	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, logger.JSON, logger.FormatFor(f), "regular files are not terminals")
}
