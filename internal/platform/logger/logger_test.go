package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelink/internal/platform/config"
)

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, config.Config{Env: config.EnvProduction, LogLevel: slog.LevelInfo})

	log.Debug("hidden")
	log.Info("search served", "results", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "search served", line["msg"])
	assert.Equal(t, "carelink", line["service"])
	assert.InDelta(t, 3, line["results"], 0)
}

func TestDevelopmentLogsText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, config.Config{Env: config.EnvDevelopment, LogLevel: slog.LevelDebug})

	log.Debug("cache miss", "kind", "provider")

	assert.Contains(t, buf.String(), "msg=\"cache miss\"")
	assert.Contains(t, buf.String(), "kind=provider")
}
