// Package config loads mixgraph settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// Prefix is prepended to every environment variable name.
	Prefix = "MIXGRAPH"

	EnvProduction  = "production"
	EnvDevelopment = "development"

	BackendLocal     = "local"
	BackendSimulated = "sim"
	BackendBridge    = "bridge"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Env string `envconfig:"ENV" default:"development"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	// Backend selection
	Backend  string `envconfig:"BACKEND" default:"local"`
	Scenario string `envconfig:"SCENARIO"`

	// Bridge settings, client and server side
	BridgeURL     string        `envconfig:"BRIDGE_URL" default:"http://127.0.0.1:7777"`
	BridgeAddr    string        `envconfig:"BRIDGE_ADDR" default:"127.0.0.1:7777"`
	BridgeToken   string        `envconfig:"BRIDGE_TOKEN"`
	BridgeTimeout time.Duration `envconfig:"BRIDGE_TIMEOUT" default:"3s"`
	HSTSMaxAge    int           `envconfig:"HSTS_MAX_AGE" default:"31536000"`

	// Sync settings
	EnumerateInterval   time.Duration `envconfig:"ENUMERATE_INTERVAL" default:"5s"`
	PollInterval        time.Duration `envconfig:"POLL_INTERVAL" default:"1s"`
	DefaultDeviceVolume float64       `envconfig:"DEFAULT_DEVICE_VOLUME" default:"80"`
	NudgeStep           float64       `envconfig:"NUDGE_STEP" default:"5"`
}

// LoadConfig loads configuration from an optional .env file and the
// environment, then validates it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not an error if the file doesn't exist
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{BackendLocal, BackendSimulated, BackendBridge}, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	if c.EnumerateInterval <= 0 {
		errs = append(errs, fmt.Errorf("enumerate interval must be positive, got %s", c.EnumerateInterval))
	}

	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}

	if c.DefaultDeviceVolume < 0 || c.DefaultDeviceVolume > 100 {
		errs = append(errs, fmt.Errorf("default device volume must be within 0-100, got %v", c.DefaultDeviceVolume))
	}

	if c.NudgeStep <= 0 || c.NudgeStep > 100 {
		errs = append(errs, fmt.Errorf("nudge step must be within 1-100, got %v", c.NudgeStep))
	}

	if c.BridgeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("bridge timeout must be positive, got %s", c.BridgeTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
