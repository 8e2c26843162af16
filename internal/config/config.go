// Package config loads the server settings from an optional YAML file and the environment.
// Environment variables win over the file; command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the toolregd configuration.
type Config struct {
	// Environment is "development", "production" or "test". Default: development.
	Environment string `yaml:"environment"`

	// AllowedOrigins is the CORS allow list. Required in production; in other
	// environments an empty list allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`

	// Addr is the HTTP listen address. Default: ":8000".
	Addr string `yaml:"addr"`

	// Database is the SQLite DSN of the document store. Default: in-memory.
	Database string `yaml:"database"`

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string `yaml:"log_level"`

	// MaxConcurrency bounds concurrent tool handlers; 0 means unlimited. Default: 10.
	MaxConcurrency int `yaml:"max_concurrency"`

	// ToolTimeout is the deadline given to each handler as a Go duration string.
	// Empty or "0" disables it. Default: 30s.
	ToolTimeout string `yaml:"tool_timeout,omitempty"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Environment:    EnvDevelopment,
		Addr:           ":8000",
		Database:       ":memory:",
		LogLevel:       "info",
		MaxConcurrency: 10,
		ToolTimeout:    "30s",
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when path is
// empty) and then with the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("ENVIRONMENT"); ok && v != "" {
		c.Environment = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		origins, err := parseList(v)
		if err != nil {
			return fmt.Errorf("ALLOWED_ORIGINS: %w", err)
		}
		c.AllowedOrigins = origins
	}
	if v, ok := lookup("TOOLREG_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("TOOLREG_DATABASE"); ok && v != "" {
		c.Database = v
	}
	if v, ok := lookup("TOOLREG_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("TOOLREG_MAX_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TOOLREG_MAX_CONCURRENCY: %w", err)
		}
		c.MaxConcurrency = n
	}
	if v, ok := lookup("TOOLREG_TOOL_TIMEOUT"); ok {
		c.ToolTimeout = v
	}
	return nil
}

// parseList accepts a JSON/YAML flow sequence (["a","b"]) or a comma-separated list.
func parseList(v string) ([]string, error) {
	v = strings.TrimSpace(v)
	var out []string
	if strings.HasPrefix(v, "[") {
		if err := yaml.Unmarshal([]byte(v), &out); err != nil {
			return nil, err
		}
	} else {
		out = strings.Split(v, ",")
	}
	cleaned := out[:0]
	for _, o := range out {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	return cleaned, nil
}

// Validate checks the configuration and joins every problem found.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{EnvDevelopment, EnvProduction, EnvTest}, c.Environment) {
		errs = append(errs, fmt.Errorf("unknown environment %q", c.Environment))
	}
	if c.IsProduction() && len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("allowed_origins is required in production"))
	}
	if c.IsProduction() && slices.Contains(c.AllowedOrigins, "*") {
		errs = append(errs, errors.New("wildcard origin is not allowed in production"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, errors.New("max_concurrency must not be negative"))
	}
	if _, err := c.timeout(); err != nil {
		errs = append(errs, fmt.Errorf("tool_timeout: %w", err))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// CORSOrigins returns the effective allow list: the configured origins, or "*" outside
// production when none are configured.
func (c *Config) CORSOrigins() []string {
	if len(c.AllowedOrigins) == 0 && !c.IsProduction() {
		return []string{"*"}
	}
	return slices.Clone(c.AllowedOrigins)
}

// SlogLevel returns the configured log level, or info when it does not parse.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// GetToolTimeout returns the handler deadline, or 0 when disabled or invalid.
func (c *Config) GetToolTimeout() time.Duration {
	d, err := c.timeout()
	if err != nil {
		return 0
	}
	return d
}

func (c *Config) timeout() (time.Duration, error) {
	if c.ToolTimeout == "" || c.ToolTimeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ToolTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}
