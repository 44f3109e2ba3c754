package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_WritesMessages(t *testing.T) {
	log := New(Config{Level: "info"})

	var buf bytes.Buffer
	log = log.Output(&buf)
	log.Info().Msg("test message")

	assert.Contains(t, buf.String(), "test message")
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	testCases := []struct {
		level         string
		expectedLevel zerolog.Level
		name          string
	}{
		{"debug", zerolog.DebugLevel, "debug"},
		{"info", zerolog.InfoLevel, "info"},
		{"warn", zerolog.WarnLevel, "warn"},
		{"error", zerolog.ErrorLevel, "error"},
		{"bogus", zerolog.InfoLevel, "unknown defaults to info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			New(Config{Level: tc.level})
			assert.Equal(t, tc.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

// The startup path builds an error-level fallback logger before the real
// one exists. zerolog's event constructors have pointer receivers, so the
// returned logger must be assigned to a variable before chaining.
func TestNew_FallbackLoggerPattern(t *testing.T) {
	fallback := New(Config{Level: "error"})

	var buf bytes.Buffer
	fallback = fallback.Output(&buf)
	fallback.Error().Str("error", "missing data dir").Msg("Failed to load configuration")

	assert.Contains(t, buf.String(), "Failed to load configuration")
}

func TestNew_LevelFiltering(t *testing.T) {
	log := New(Config{Level: "warn"})

	var buf bytes.Buffer
	log = log.Output(&buf)
	log.Info().Msg("filtered")
	log.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "filtered")
	assert.Contains(t, buf.String(), "kept")
}
