// Package config provides configuration loading and validation for the CLI and the server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/job-matcher/internal/logging"
)

// Defaults applied when neither a flag, the config file, nor the environment sets a value.
const (
	DefaultPort                = 8080
	DefaultLogLevel            = "info"
	DefaultMatchTimeoutSeconds = 10
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use the environment or defaults.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL URL, or sqlite:// path
	Port        int    `json:"port,omitempty"`         // HTTP listen port

	// Logging
	LogLevel string `json:"log_level,omitempty"` // debug, info, warn, error
	LogJSON  bool   `json:"log_json,omitempty"`  // JSON log lines instead of console output

	// Matching
	Workers             int `json:"workers,omitempty"`               // Concurrent scorers (0 = GOMAXPROCS)
	MatchTimeoutSeconds int `json:"match_timeout_seconds,omitempty"` // Deadline for one match request
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                DefaultPort,
		LogLevel:            DefaultLogLevel,
		MatchTimeoutSeconds: DefaultMatchTimeoutSeconds,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads DATABASE_URL, PORT, LOG_LEVEL, LOG_JSON, MATCH_WORKERS and MATCH_TIMEOUT.
// MATCH_TIMEOUT accepts a Go duration ("15s") or whole seconds ("15").
func FromEnv() (Config, error) {
	var cfg Config
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")

	var err error
	if cfg.Port, err = envInt("PORT"); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = envInt("MATCH_WORKERS"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		if cfg.LogJSON, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_JSON: %w", err)
		}
	}
	if v := os.Getenv("MATCH_TIMEOUT"); v != "" {
		seconds, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MATCH_TIMEOUT: %w", err)
		}
		cfg.MatchTimeoutSeconds = seconds
	}
	return cfg, nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// parseSeconds parses a duration or a bare integer number of seconds, rounding up.
func parseSeconds(v string) (int, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	return int((d + time.Second - 1) / time.Second), nil
}

// Resolve layers the config file over the environment over the defaults.
// file may be nil when no config file was given.
func Resolve(file *Config) (Config, error) {
	env, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	merged := env.MergeWithDefaults(Defaults())
	if file != nil {
		merged = file.MergeWithDefaults(merged)
	}
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.MatchTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'match_timeout_seconds' must be non-negative")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}
	return nil
}

// MatchTimeout returns the match request deadline.
func (c *Config) MatchTimeout() time.Duration {
	if c.MatchTimeoutSeconds <= 0 {
		return DefaultMatchTimeoutSeconds * time.Second
	}
	return time.Duration(c.MatchTimeoutSeconds) * time.Second
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.MatchTimeoutSeconds == 0 {
		result.MatchTimeoutSeconds = defaults.MatchTimeoutSeconds
	}

	// A true anywhere in the chain enables JSON logs; false cannot be told apart from unset.
	result.LogJSON = result.LogJSON || defaults.LogJSON

	return result
}
