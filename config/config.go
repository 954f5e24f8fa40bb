// Package config provides the YAML application configuration for the config
// status daemon: logging, locale defaulting, notification worker sizing, the
// NATS event sink, translation bundles and the metrics endpoint.
package config

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fatihboy/smarthome/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Locale       string             `yaml:"default_locale"`
	Notify       NotifyConfig       `yaml:"notify"`
	NATS         NATSConfig         `yaml:"nats"`
	Translations TranslationsConfig `yaml:"translations"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig controls the slog handler
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// NotifyConfig sizes the background notification worker pool
type NotifyConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// NATSConfig configures the event sink connection. Wait and timeout values
// are in milliseconds.
type NATSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	URL             string `yaml:"url"`
	Name            string `yaml:"name"`
	MaxReconnects   int    `yaml:"max_reconnects"`
	ReconnectWaitMs int    `yaml:"reconnect_wait_ms"`
	DrainTimeoutMs  int    `yaml:"drain_timeout_ms"`
}

// ReconnectWait returns the reconnect wait as a duration
func (c NATSConfig) ReconnectWait() time.Duration {
	return time.Duration(c.ReconnectWaitMs) * time.Millisecond
}

// DrainTimeout returns the drain timeout as a duration
func (c NATSConfig) DrainTimeout() time.Duration {
	return time.Duration(c.DrainTimeoutMs) * time.Millisecond
}

// TranslationsConfig locates the translation bundle directory
type TranslationsConfig struct {
	Dir string `yaml:"dir"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Locale: "en",
		Notify: NotifyConfig{
			Workers:   4,
			QueueSize: 256,
		},
		NATS: NATSConfig{
			Enabled:         false,
			URL:             "nats://localhost:4222",
			Name:            "configstatusd",
			MaxReconnects:   -1,
			ReconnectWaitMs: 2000,
			DrainTimeoutMs:  5000,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9090",
		},
	}
}

// Load reads the configuration file at path, applies defaults for omitted
// fields and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "config file read")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "config file parsing")
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides lets the environment override select fields
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SMARTHOME_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SMARTHOME_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SMARTHOME_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("SMARTHOME_LOCALE"); v != "" {
		c.Locale = v
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log level %q", c.Logging.Level),
			"Config", "Validate", "logging validation")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log format %q", c.Logging.Format),
			"Config", "Validate", "logging validation")
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return errors.WrapInvalid(
			fmt.Errorf("unparseable default locale %q: %w", c.Locale, err),
			"Config", "Validate", "locale validation")
	}

	if c.Notify.Workers < 0 || c.Notify.QueueSize < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("notify workers and queue_size must not be negative"),
			"Config", "Validate", "notify validation")
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"Config", "Validate", "nats url validation")
	}

	if c.NATS.ReconnectWaitMs < 0 || c.NATS.DrainTimeoutMs < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("nats wait and timeout values must not be negative"),
			"Config", "Validate", "nats validation")
	}

	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"Config", "Validate", "metrics listen address validation")
	}

	return nil
}

// DefaultLocale returns the parsed default locale. Validate must have
// accepted the configuration first.
func (c *Config) DefaultLocale() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
