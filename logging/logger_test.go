package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "json", Output: &buf})

	log.Info().Msg("hidden")
	log.Warn().Int("page", 3).Msg("Skipping image")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Skipping image", entry["message"])
	assert.Equal(t, float64(3), entry["page"])
	assert.Equal(t, "pdf_compressor", entry["service"])
	assert.Contains(t, entry, "time")
}

func TestNewLogsWrappedErrorStack(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Output: &buf})

	// pdfcpu reports failures with pkg/errors; callers wrap them with %w
	err := fmt.Errorf("failed to render image object 7: %w", errors.New("corrupt image object"))
	log.Error().Stack().Err(err).Msg("Compression failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "failed to render image object 7: corrupt image object", entry["error"])
	stack, ok := entry[zerolog.ErrorStackFieldName].([]any)
	require.True(t, ok, "missing stack in %s", buf.String())
	require.NotEmpty(t, stack)
	assert.Contains(t, stack[0], "func")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "console", Output: &buf})
	log.Debug().Str("tier", "less").Msg("Compressing PDF")
	assert.Contains(t, buf.String(), "Compressing PDF")
	assert.Contains(t, buf.String(), "tier=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
