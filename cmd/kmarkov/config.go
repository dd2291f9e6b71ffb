package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v2"
)

// Config holds the settings of the command line tool.
type Config struct {
	DatabasePath     string `json:"database_path" yaml:"database_path"`
	LogLevel         string `json:"log_level" yaml:"log_level"`
	DefaultOrder     int    `json:"default_order" yaml:"default_order"`
	DefaultLength    int    `json:"default_length" yaml:"default_length"`
	Seed             uint64 `json:"seed" yaml:"seed"` // 0 draws a fresh seed for every run
	BatchConcurrency int    `json:"batch_concurrency" yaml:"batch_concurrency"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:     "./kmarkov.db?_journal_mode=WAL&_busy_timeout=5000",
		LogLevel:         "info",
		DefaultOrder:     4,
		DefaultLength:    500,
		Seed:             0,
		BatchConcurrency: 4,
	}
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must be specified")
	}
	if c.DefaultOrder < 1 {
		return fmt.Errorf("default_order must be positive, got %d", c.DefaultOrder)
	}
	if c.DefaultLength < c.DefaultOrder {
		return fmt.Errorf("default_length %d is shorter than default_order %d", c.DefaultLength, c.DefaultOrder)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be positive, got %d", c.BatchConcurrency)
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func marshalConfig(path string, config *Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

// LoadConfig reads the configuration from the file at path, as YAML if the
// extension is .yaml or .yml and as JSON otherwise. Missing fields keep
// their defaults. If the file doesn't exist, it is created with the
// default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = marshalConfig(path, config)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Not fatal, the defaults are still usable.
				slog.Warn("Failed to write default config file", "path", path, "error", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, config)
	} else {
		err = json.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level: %s", level)
	}
}
