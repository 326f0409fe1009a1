package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/OCAP2/aimsolver/internal/dispatcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ dispatcher.Logger = (*DispatcherLogger)(nil)

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*DispatcherLogger)
		level string
		msg   string
		attrs map[string]any
	}{
		{
			name:  "debug",
			log:   func(l *DispatcherLogger) { l.Debug("handling event", "command", ":CALC:", "args", 0) },
			level: "DEBUG",
			msg:   "handling event",
			attrs: map[string]any{"command": ":CALC:", "args": float64(0)},
		},
		{
			name:  "info",
			log:   func(l *DispatcherLogger) { l.Info("mode switched", "mode", "ANGLE") },
			level: "INFO",
			msg:   "mode switched",
			attrs: map[string]any{"mode": "ANGLE"},
		},
		{
			name:  "error",
			log:   func(l *DispatcherLogger) { l.Error("event failed", "command", ":CALC:", "error", "positions not set") },
			level: "ERROR",
			msg:   "event failed",
			attrs: map[string]any{"command": ":CALC:", "error": "positions not set"},
		},
		{
			name:  "no attributes",
			log:   func(l *DispatcherLogger) { l.Info("ready") },
			level: "INFO",
			msg:   "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			tt.log(NewDispatcherLogger(logger))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["msg"])
			for k, v := range tt.attrs {
				assert.Equal(t, v, entry[k], k)
			}
		})
	}
}

func TestDispatcherLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewDispatcherLogger(logger).Debug("handling event", "command", ":INFO:")

	assert.Empty(t, buf.String())
}
