package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "json")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := Component("fitter")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"component":"fitter"`)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestInitWriter_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "verbose", "text")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
