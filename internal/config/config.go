// Package config provides the ieeecheck configuration file: where the
// analysis service lives, how long to wait for it, how the cosmetic progress
// estimate behaves, and where the local history database is kept.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/ieeecheck/ieeecheck/internal/workflow"
)

// DefaultPath is where the configuration file lives unless overridden.
const DefaultPath = "~/.config/ieeecheck/config.yaml"

// Config represents the full ieeecheck configuration file.
type Config struct {
	BaseURL  string         `yaml:"base_url" mapstructure:"base_url"`
	Timeout  string         `yaml:"timeout" mapstructure:"timeout"`
	LogFile  string         `yaml:"log_file,omitempty" mapstructure:"log_file"`
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
}

// ProgressConfig tunes the progress estimate shown while a document is
// being analyzed.
type ProgressConfig struct {
	Interval string  `yaml:"interval" mapstructure:"interval"`
	MinStep  float64 `yaml:"min_step" mapstructure:"min_step"`
	MaxStep  float64 `yaml:"max_step" mapstructure:"max_step"`
	Ceiling  float64 `yaml:"ceiling" mapstructure:"ceiling"`
}

// HistoryConfig controls the local record of past checks.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
	Keep    int    `yaml:"keep" mapstructure:"keep"` // 0 keeps everything
}

// NewDefaultConfig returns a Config populated with safe defaults. The base
// URL is left empty: it depends on the deployment.
func NewDefaultConfig() *Config {
	def := workflow.DefaultProgressConfig()
	return &Config{
		Timeout: "2m",
		Progress: ProgressConfig{
			Interval: def.Interval.String(),
			MinStep:  def.MinStep,
			MaxStep:  def.MaxStep,
			Ceiling:  def.Ceiling,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "~/.config/ieeecheck/history.db",
			Keep:    500,
		},
	}
}

// TimeoutDuration returns Timeout parsed, or 0 when unset or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Workflow converts the progress settings for the workflow controller.
// Invalid values are corrected by the controller.
func (p ProgressConfig) Workflow() workflow.ProgressConfig {
	interval, _ := time.ParseDuration(p.Interval)
	return workflow.ProgressConfig{
		Interval: interval,
		MinStep:  p.MinStep,
		MaxStep:  p.MaxStep,
		Ceiling:  p.Ceiling,
	}
}

// HistoryPath returns the database path with ~ expanded.
func (c *Config) HistoryPath() (string, error) {
	return homedir.Expand(c.History.Path)
}

// LogPath returns the log file path with ~ expanded, or "" when logging is
// off.
func (c *Config) LogPath() (string, error) {
	if c.LogFile == "" {
		return "", nil
	}
	return homedir.Expand(c.LogFile)
}

// ResolvePath expands path, falling back to DefaultPath when empty.
func ResolvePath(path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	return homedir.Expand(path)
}

// ReadConfig reads a YAML config file on top of the defaults.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig writes cfg as YAML, creating parent directories as needed.
func WriteConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
