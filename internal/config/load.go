package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// IEEECHECK_BASE_URL or IEEECHECK_PROGRESS_INTERVAL.
const EnvPrefix = "IEEECHECK"

// Load reads the configuration at path with environment overrides applied.
// An empty path means DefaultPath, which may be missing; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	// Create a new viper instance to avoid sharing global state
	v := viper.New()
	setDefaults(v, NewDefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, statErr := os.Stat(resolved); statErr == nil {
		v.SetConfigFile(resolved)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", resolved, err)
		}
	} else if explicit || !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", resolved, statErr)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override keys
// absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("progress.interval", d.Progress.Interval)
	v.SetDefault("progress.min_step", d.Progress.MinStep)
	v.SetDefault("progress.max_step", d.Progress.MaxStep)
	v.SetDefault("progress.ceiling", d.Progress.Ceiling)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.keep", d.History.Keep)
}

// Validate checks every field. An empty base URL is allowed here; commands
// that contact the service require it separately.
func (c *Config) Validate() error {
	if err := ValidateOptionalBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if err := ValidateDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	if err := ValidateLogFile(c.LogFile); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}
	if err := ValidateDuration(c.Progress.Interval); err != nil {
		return fmt.Errorf("progress.interval: %w", err)
	}
	if c.Progress.MinStep < 0 {
		return fmt.Errorf("progress.min_step must not be negative")
	}
	if c.Progress.MaxStep < c.Progress.MinStep {
		return fmt.Errorf("progress.max_step must be at least progress.min_step")
	}
	if c.Progress.Ceiling <= 0 || c.Progress.Ceiling >= 100 {
		return fmt.Errorf("progress.ceiling must be between 0 and 100 (exclusive)")
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("history.keep must not be negative")
	}
	if c.History.Enabled {
		if err := ValidateNonEmpty(c.History.Path); err != nil {
			return fmt.Errorf("history.path: %w", err)
		}
	}
	return nil
}
