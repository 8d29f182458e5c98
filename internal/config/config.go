// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/abhisek/talentflow/internal/logging"
)

// Config holds everything the CLI needs to wire components.
type Config struct {
	// DBPath overrides the default database location. Empty means the
	// store picks its default.
	DBPath string

	// AutosaveDelay is the quiet period before a draft is written.
	// Default: 1s.
	AutosaveDelay time.Duration

	Log logging.Config

	errs []error
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AutosaveDelay: time.Second,
		Log:           logging.DefaultConfig(),
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. Malformed values are reported by Validate.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("TALENTFLOW_DB"); p != "" {
		cfg.DBPath = p
	}

	if d := os.Getenv("TALENTFLOW_AUTOSAVE_DELAY"); d != "" {
		delay, err := parseDelay(d)
		if err != nil {
			cfg.errs = append(cfg.errs, fmt.Errorf("TALENTFLOW_AUTOSAVE_DELAY: %w", err))
		} else {
			cfg.AutosaveDelay = delay
		}
	}

	if l := os.Getenv("TALENTFLOW_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	if f := os.Getenv("TALENTFLOW_LOG_FORMAT"); f != "" {
		cfg.Log.Format = f
	}
	if f := os.Getenv("TALENTFLOW_LOG_FILE"); f != "" {
		cfg.Log.File = f
	}

	return cfg
}

// parseDelay accepts a Go duration ("750ms") or a bare number of
// milliseconds ("750").
func parseDelay(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// Validate reports malformed environment values and out-of-range settings.
func (c Config) Validate() error {
	errs := append([]error(nil), c.errs...)
	if c.AutosaveDelay <= 0 {
		errs = append(errs, fmt.Errorf("autosave delay must be positive, got %s", c.AutosaveDelay))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
