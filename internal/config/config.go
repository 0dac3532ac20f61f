// Package config loads application configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Content  ContentConfig  `yaml:"content"`
	Scan     ScanConfig     `yaml:"scan"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds record database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ContentConfig holds content library settings.
type ContentConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
}

// ScanConfig holds scan pacing settings.
type ScanConfig struct {
	StepsPerSecond float64 `yaml:"steps_per_second"` // 0 = unpaced
	Watch          bool    `yaml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "/data/romdex.db",
		},
		Content: ContentConfig{
			Dir:        "/content",
			Extensions: []string{"zip", "bin", "rom", "iso", "nes", "sfc", "md", "gba", "n64"},
		},
		Scan: ScanConfig{
			StepsPerSecond: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("RD_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("RD_CONTENT_DIR"); v != "" {
		c.Content.Dir = v
	}
	if v := os.Getenv("RD_CONTENT_EXTENSIONS"); v != "" {
		c.Content.Extensions = splitList(v)
	}
	if v := os.Getenv("RD_SCAN_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scan.StepsPerSecond = rate
		}
	}
	if v := os.Getenv("RD_SCAN_WATCH"); v != "" {
		c.Scan.Watch = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("RD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("RD_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Content.Dir == "" {
		return fmt.Errorf("content directory is required")
	}
	if len(c.Content.Extensions) == 0 {
		return fmt.Errorf("at least one content extension is required")
	}
	if c.Scan.StepsPerSecond < 0 {
		return fmt.Errorf("invalid scan rate: %v", c.Scan.StepsPerSecond)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
