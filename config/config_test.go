package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads, restoring them afterwards
func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "MAX_FILE_SIZE", "TEMP_DIR", "OPTIMIZER_BACKEND",
		"GHOSTSCRIPT_PATH", "OPTIMIZER_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, BackendGhostscript, cfg.Optimizer.Backend)
	assert.Zero(t, cfg.Optimizer.Timeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
  output_retention: 2m
upload:
  max_file_size: 1048576
optimizer:
  backend: pdfcpu
  timeout: 45s
log:
  level: debug
  format: json
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.OutputRetention)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxFileSize)
	assert.Equal(t, BackendPdfcpu, cfg.Optimizer.Backend)
	assert.Equal(t, 45*time.Second, cfg.Optimizer.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched values keep their defaults
	assert.Equal(t, DefaultTempDir, cfg.Upload.TempDir)

	// Environment wins over the file
	t.Setenv("PORT", "7070")
	t.Setenv("OPTIMIZER_TIMEOUT", "120")
	t.Setenv("MAX_FILE_SIZE", "2048")
	t.Setenv("LOG_LEVEL", "warn")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Optimizer.Timeout)
	assert.Equal(t, int64(2048), cfg.Upload.MaxFileSize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"bad port":        {"PORT": "http"},
		"port range":      {"PORT": "70000"},
		"bad size":        {"MAX_FILE_SIZE": "big"},
		"negative size":   {"MAX_FILE_SIZE": "-1"},
		"bad timeout":     {"OPTIMIZER_TIMEOUT": "soon"},
		"bad backend":     {"OPTIMIZER_BACKEND": "qpdf"},
		"bad log format":  {"LOG_FORMAT": "xml"},
		"bad log level":   {"LOG_LEVEL": "loud"},
		"negative period": {"OPTIMIZER_TIMEOUT": "-5s"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse config file")
}
