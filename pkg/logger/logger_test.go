//go:build unit || !integration

package logger

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogging(t *testing.T) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})

	var logging strings.Builder
	configureLogging(LogModeDefault, "info", func(w *zerolog.ConsoleWriter) {
		w.Out = &logging
		w.NoColor = true
	})

	ctx := ContextWithInstanceIDLogger(context.Background(), "abc123")
	log.Ctx(ctx).Info().Msg("testing message")

	actual := logging.String()
	assert.Contains(t, actual, "testing message")
	assert.Contains(t, actual, "[InstanceID:abc123]")
	assert.Contains(t, actual, "logger/logger_test.go")
}

func TestParseLogMode(t *testing.T) {
	mode, err := ParseLogMode("JSON")
	require.NoError(t, err)
	assert.Equal(t, LogModeJSON, mode)

	mode, err = ParseLogMode("")
	require.NoError(t, err)
	assert.Equal(t, LogModeDefault, mode)

	_, err = ParseLogMode("station")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel("bogus"))
}
