package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	logger, logs := NewTestLogger(t)

	logger.Debug("parsing unit", slog.String("unit", "lote.zip"))
	logger.Warn("duplicate collapsed", slog.Int("count", 2))
	logger.Error("export failed")

	require.Equal(t, 3, logs.Count())
	assert.True(t, logs.HasMessage("collapsed"))
	assert.False(t, logs.HasMessage("nope"))
	assert.True(t, logs.HasAttr("unit", "lote.zip"))
	assert.True(t, logs.HasAttr("count", int64(2)))
	assert.Len(t, logs.AtLevel(slog.LevelWarn), 1)
	AssertLogContains(t, logs, slog.LevelError, "export")

	logs.Reset()
	assert.Zero(t, logs.Count())
	AssertNoErrors(t, logs)
}

func TestLogCapture_DerivedHandlers(t *testing.T) {
	logger, logs := NewTestLogger(t)

	logger.With(slog.String("component", "pipeline")).
		WithGroup("unit").
		Info("loaded", slog.String("name", "a.xml"))

	records := logs.Records()
	require.Len(t, records, 1)
	assert.Equal(t, map[string]any{
		"component": "pipeline",
		"unit.name": "a.xml",
	}, records[0].Attrs)
}
