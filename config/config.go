// Package config loads the compressor configuration from defaults, an
// optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxFileSize is the default maximum upload size (50MB)
	DefaultMaxFileSize = 50 * 1024 * 1024

	// DefaultPort is the default server port
	DefaultPort = "8080"

	// DefaultTempDir is the default temporary directory
	DefaultTempDir = "./temp"

	BackendGhostscript = "ghostscript"
	BackendPdfcpu      = "pdfcpu"
)

// Config holds all configuration for the compressor
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upload    UploadConfig    `yaml:"upload"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port             string        `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	// OutputRetention is how long compressed files stay downloadable
	OutputRetention time.Duration `yaml:"output_retention"`
}

// UploadConfig holds upload limits and the working directory
type UploadConfig struct {
	MaxFileSize int64  `yaml:"max_file_size"`
	TempDir     string `yaml:"temp_dir"`
}

// OptimizerConfig selects and tunes the external optimizer
type OptimizerConfig struct {
	Backend            string        `yaml:"backend"` // ghostscript or pdfcpu
	GhostscriptPath    string        `yaml:"ghostscript_path"`
	Timeout            time.Duration `yaml:"timeout"` // 0 waits indefinitely
	CompatibilityLevel string        `yaml:"compatibility_level"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             DefaultPort,
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      60 * time.Second,
			GracefulShutdown: 10 * time.Second,
			OutputRetention:  10 * time.Minute,
		},
		Upload: UploadConfig{
			MaxFileSize: DefaultMaxFileSize,
			TempDir:     DefaultTempDir,
		},
		Optimizer: OptimizerConfig{
			Backend:            BackendGhostscript,
			GhostscriptPath:    "gs",
			Timeout:            0,
			CompatibilityLevel: "1.4",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.Upload.MaxFileSize)
	}

	if c.Upload.TempDir == "" {
		return fmt.Errorf("temp_dir must not be empty")
	}

	if c.Optimizer.Backend != BackendGhostscript && c.Optimizer.Backend != BackendPdfcpu {
		return fmt.Errorf("invalid optimizer backend: %s", c.Optimizer.Backend)
	}

	if c.Optimizer.Backend == BackendGhostscript && c.Optimizer.GhostscriptPath == "" {
		return fmt.Errorf("ghostscript_path must not be empty")
	}

	if c.Optimizer.Timeout < 0 {
		return fmt.Errorf("optimizer timeout must not be negative")
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Upload.TempDir = getEnv("TEMP_DIR", cfg.Upload.TempDir)
	cfg.Optimizer.Backend = getEnv("OPTIMIZER_BACKEND", cfg.Optimizer.Backend)
	cfg.Optimizer.GhostscriptPath = getEnv("GHOSTSCRIPT_PATH", cfg.Optimizer.GhostscriptPath)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	var err error
	if cfg.Upload.MaxFileSize, err = getEnvInt64("MAX_FILE_SIZE", cfg.Upload.MaxFileSize); err != nil {
		return err
	}
	if cfg.Optimizer.Timeout, err = getEnvDuration("OPTIMIZER_TIMEOUT", cfg.Optimizer.Timeout); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return intValue, nil
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, value)
	}
	return d, nil
}
