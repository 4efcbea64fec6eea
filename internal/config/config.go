// Package config loads feedboard settings.
//
// Values are layered: built-in defaults, then the YAML file named by --config
// or FEEDBOARD_CONFIG, then FEEDBOARD_* environment variables. Command flags
// are applied last by the caller, and only when explicitly set.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/h0rv/feedboard/internal/domain"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig    = "FEEDBOARD_CONFIG"
	EnvBaseURL   = "FEEDBOARD_BASE_URL"
	EnvReconnect = "FEEDBOARD_RECONNECT"
	EnvLogFile   = "FEEDBOARD_LOG_FILE"
	EnvLogLevel  = "FEEDBOARD_LOG_LEVEL"
)

// DefaultBaseURL is the backend used when nothing else is configured.
const DefaultBaseURL = "http://localhost:8003"

// Config is the full feedboard configuration.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:8003.
	BaseURL string `yaml:"base_url"`

	// LandlordID is the landlord to subscribe as. Empty means ask or idle.
	LandlordID string `yaml:"landlord_id"`

	// Landlords lists the identities offered by the landlord picker.
	Landlords []domain.Landlord `yaml:"landlords"`

	// Vendors are the labels offered by the assignment panel.
	Vendors []string `yaml:"vendors"`

	Reconnect ReconnectConfig `yaml:"reconnect"`
	Log       LogConfig       `yaml:"log"`
}

// ReconnectConfig controls redialing a failed stream.
type ReconnectConfig struct {
	// Enabled turns on automatic reconnects. Off means manual refresh only.
	Enabled bool `yaml:"enabled"`

	// InitialInterval is the first backoff wait. Default: 1s
	InitialInterval time.Duration `yaml:"initial_interval"`

	// MaxInterval caps the backoff wait. Default: 30s
	MaxInterval time.Duration `yaml:"max_interval"`

	// MaxRetries stops reconnecting after this many failures. 0 is unlimited.
	MaxRetries int `yaml:"max_retries"`
}

// LogConfig controls diagnostics output.
type LogConfig struct {
	// File receives log output. Empty discards logs.
	File string `yaml:"file"`

	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`
}

// Default returns the configuration used before any file or env is applied.
func Default() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Vendors: append([]string(nil), domain.DefaultVendors...),
		Reconnect: ReconnectConfig{
			InitialInterval: time.Second,
			MaxInterval:     30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path falls back to FEEDBOARD_CONFIG; when that is
// unset too, no file is read.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file into the config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays FEEDBOARD_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvReconnect); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReconnect, err)
		}
		c.Reconnect.Enabled = enabled
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid base_url: %q", c.BaseURL))
	}

	if len(c.Vendors) == 0 {
		errs = append(errs, errors.New("at least one vendor is required"))
	}
	for i, v := range c.Vendors {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("vendors[%d] is empty", i))
		}
	}

	seen := make(map[string]bool, len(c.Landlords))
	for i, l := range c.Landlords {
		if strings.TrimSpace(l.ID) == "" {
			errs = append(errs, fmt.Errorf("landlords[%d].id is required", i))
			continue
		}
		if seen[l.ID] {
			errs = append(errs, fmt.Errorf("duplicate landlord id: %s", l.ID))
		}
		seen[l.ID] = true
	}

	if c.Reconnect.InitialInterval < 0 || c.Reconnect.MaxInterval < 0 {
		errs = append(errs, errors.New("reconnect intervals must not be negative"))
	}
	if c.Reconnect.MaxInterval > 0 && c.Reconnect.InitialInterval > c.Reconnect.MaxInterval {
		errs = append(errs, errors.New("reconnect.initial_interval exceeds reconnect.max_interval"))
	}
	if c.Reconnect.MaxRetries < 0 {
		errs = append(errs, errors.New("reconnect.max_retries must not be negative"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Log.Level))
	}

	return errors.Join(errs...)
}
