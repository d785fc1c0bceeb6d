package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookey/internal/calendar"
	"bookey/internal/config"
)

func TestSetupLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestOpenLogFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bookey.log")
	f, err := openLogFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.FileExists(t, path)
}

func TestNewBackend_Memory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendMemory
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend, err := newBackend(context.Background(), cfg, logger, time.UTC)
	require.NoError(t, err)
	assert.IsType(t, &calendar.Memory{}, backend)
}

func TestNewBackend_Unknown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "outlook"
	_, err := newBackend(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
	assert.Error(t, err)
}
