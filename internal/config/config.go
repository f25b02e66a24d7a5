// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// Soul Sense.
//
// Configuration is TOML with sensible defaults and environment
// variable overrides (SOULSENSE_* prefix). File location:
//
//   - ~/.soulsense/config.toml
//   - Built-in defaults otherwise
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/soulsense/soulsense-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete Soul Sense client configuration.
type Config struct {
	Version string `toml:"version"`

	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Security SecurityConfig `toml:"security"`
	UI       UIConfig       `toml:"ui"`
}

// DatabaseConfig locates the local SQLite database.
type DatabaseConfig struct {
	// Path is the database file path (empty = ~/.soulsense/soulsense.db).
	Path string `toml:"path"`
}

// SessionConfig controls the idle session monitor.
type SessionConfig struct {
	// Enabled is the master switch for idle monitoring.
	Enabled bool `toml:"enabled"`

	// IdleTimeoutSecs is the total inactivity budget in seconds.
	// Clamped to [60, 7200]. Default: 900 (15 minutes).
	IdleTimeoutSecs int `toml:"idle_timeout_secs"`

	// WarningLeadSecs is how long before timeout the warning shows.
	// Must be less than IdleTimeoutSecs; invalid values are clamped.
	// Default: 30.
	WarningLeadSecs int `toml:"warning_lead_secs"`
}

// SecurityConfig contains authentication hardening settings.
type SecurityConfig struct {
	// MaxLoginAttempts is the failed-login limit before lockout.
	MaxLoginAttempts int `toml:"max_login_attempts"`

	// LockoutDurationMinutes is how long an account stays locked.
	LockoutDurationMinutes int `toml:"lockout_duration_minutes"`

	// MFAEnabled offers TOTP enrollment after registration.
	MFAEnabled bool `toml:"mfa_enabled"`

	// AuditEnabled enables the append-only audit log.
	AuditEnabled bool `toml:"audit_enabled"`

	// AuditLogPath overrides the audit log location
	// (empty = ~/.soulsense/audit.log).
	AuditLogPath string `toml:"audit_log_path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// ShowStatusBar toggles the bottom status bar.
	ShowStatusBar bool `toml:"show_status_bar"`
}

// =============================================================================
// LIMITS
// =============================================================================

const (
	// MinIdleTimeout and MaxIdleTimeout bound the inactivity budget.
	MinIdleTimeout = time.Minute
	MaxIdleTimeout = 2 * time.Hour

	// DefaultIdleTimeoutSecs corresponds to 15 minutes.
	DefaultIdleTimeoutSecs = 900

	// DefaultWarningLeadSecs corresponds to 30 seconds.
	DefaultWarningLeadSecs = 30
)

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Session: SessionConfig{
			Enabled:         true,
			IdleTimeoutSecs: DefaultIdleTimeoutSecs,
			WarningLeadSecs: DefaultWarningLeadSecs,
		},
		Security: SecurityConfig{
			MaxLoginAttempts:       3,
			LockoutDurationMinutes: 15,
			MFAEnabled:             false,
			AuditEnabled:           true,
		},
		UI: UIConfig{
			ShowStatusBar: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the Soul Sense configuration directory (~/.soulsense).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".soulsense"), nil
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// DatabasePath resolves the database location, falling back to the
// default inside the config directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "soulsense.db"), nil
}

// AuditLogPath resolves the audit log location.
func (c *Config) AuditLogPath() (string, error) {
	if c.Security.AuditLogPath != "" {
		return c.Security.AuditLogPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.log"), nil
}

// =============================================================================
// LOADING & SAVING
// =============================================================================

// Load reads the configuration from the default path, applying
// defaults, environment overrides and clamping. A missing file is not
// an error; defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.Clamp()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration as TOML to an explicit path.
// The write is atomic so a crash mid-save cannot corrupt the file.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0o600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration for inconsistencies that Clamp
// cannot repair.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Security.MaxLoginAttempts < 1 {
		errs = append(errs, ValidationError{
			Field:   "security.max_login_attempts",
			Message: "must be at least 1",
		})
	}
	if c.Security.LockoutDurationMinutes < 1 {
		errs = append(errs, ValidationError{
			Field:   "security.lockout_duration_minutes",
			Message: "must be at least 1",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clamp forces session timing values into their valid ranges. The
// warning lead is pulled below the idle timeout so the countdown can
// never start negative.
func (c *Config) Clamp() {
	if c.Session.IdleTimeoutSecs <= 0 {
		c.Session.IdleTimeoutSecs = DefaultIdleTimeoutSecs
	}
	if d := time.Duration(c.Session.IdleTimeoutSecs) * time.Second; d < MinIdleTimeout {
		c.Session.IdleTimeoutSecs = int(MinIdleTimeout / time.Second)
	} else if d > MaxIdleTimeout {
		c.Session.IdleTimeoutSecs = int(MaxIdleTimeout / time.Second)
	}

	if c.Session.WarningLeadSecs < 0 {
		c.Session.WarningLeadSecs = 0
	}
	if c.Session.WarningLeadSecs >= c.Session.IdleTimeoutSecs {
		c.Session.WarningLeadSecs = c.Session.IdleTimeoutSecs - 1
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SOULSENSE_* environment variables on top of
// file values. Overrides win over the file; Clamp still applies after.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SOULSENSE_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SOULSENSE_IDLE_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.IdleTimeoutSecs = n
		}
	}
	if v := os.Getenv("SOULSENSE_WARNING_LEAD_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.WarningLeadSecs = n
		}
	}
	if v := os.Getenv("SOULSENSE_SESSION_ENABLED"); v != "" {
		c.Session.Enabled = parseBool(v, c.Session.Enabled)
	}
	if v := os.Getenv("SOULSENSE_AUDIT_ENABLED"); v != "" {
		c.Security.AuditEnabled = parseBool(v, c.Security.AuditEnabled)
	}
	if v := os.Getenv("SOULSENSE_MFA_ENABLED"); v != "" {
		c.Security.MFAEnabled = parseBool(v, c.Security.MFAEnabled)
	}
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}

// =============================================================================
// DERIVED DURATIONS
// =============================================================================

// IdleTimeout returns the inactivity budget as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutSecs) * time.Second
}

// WarningLead returns the warning lead as a duration.
func (c *Config) WarningLead() time.Duration {
	return time.Duration(c.Session.WarningLeadSecs) * time.Second
}

// LockoutDuration returns the account lockout duration.
func (c *Config) LockoutDuration() time.Duration {
	return time.Duration(c.Security.LockoutDurationMinutes) * time.Minute
}
