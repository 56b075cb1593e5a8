package common

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"unknown falls back", "verbose", zerolog.InfoLevel},
		{"empty falls back", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	t.Setenv("APP_ENV", "")

	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "test").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNewLoggerConsole(t *testing.T) {
	t.Setenv("APP_ENV", "")

	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "console")

	logger.Debug().Int("pile", 4).Msg("Console line")

	out := buf.String()
	assert.Contains(t, out, "Console line")
	assert.Contains(t, out, "pile=")
	assert.NotContains(t, out, `"message"`)
}

func TestNewLoggerProductionForcesJSON(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "console")
	logger.Info().Msg("prod")
	assert.Contains(t, buf.String(), `"message":"prod"`)
}

func TestSignalContextCancel(t *testing.T) {
	ctx, cancel := SignalContext(context.Background(), zerolog.Nop())
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}
