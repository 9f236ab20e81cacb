// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/receipta-tui/internal/route"
	"github.com/jeranaias/receipta-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete receipta configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend" yaml:"backend"`
	Session SessionConfig `toml:"session" json:"session" yaml:"session"`
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`
	Log     LogConfig     `toml:"log" json:"log" yaml:"log"`
	UI      UIConfig      `toml:"ui" json:"ui" yaml:"ui"`
}

// BackendConfig points at the hosted auth/database service.
type BackendConfig struct {
	// URL is the project URL, e.g. https://xyz.supabase.co
	URL string `toml:"url" json:"url" yaml:"url"`
	// AnonKey is the public anon API key sent as the apikey header.
	AnonKey string `toml:"anon_key" json:"anon_key" yaml:"anon_key"`
	// RequestTimeoutSecs bounds each backend request.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs" yaml:"request_timeout_secs"`
}

// SessionConfig controls the idle session guard.
type SessionConfig struct {
	// IdleTimeoutMs is the inactivity window in milliseconds. 0 means the
	// default; negative values are rejected.
	IdleTimeoutMs int64 `toml:"idle_timeout_ms" json:"idle_timeout_ms" yaml:"idle_timeout_ms"`
	// LoginPath is where the user lands after an idle logout. Must be public.
	LoginPath string `toml:"login_path" json:"login_path" yaml:"login_path"`
	// PublicRoutes is the exact-match allow-list of routes without a watchdog.
	PublicRoutes []string `toml:"public_routes" json:"public_routes" yaml:"public_routes"`
	// LogoutTimeoutSecs bounds the logout call made on idle.
	LogoutTimeoutSecs int `toml:"logout_timeout_secs" json:"logout_timeout_secs" yaml:"logout_timeout_secs"`
	// AuditLogPath is the audit trail file (empty = ~/.receipta/audit.log).
	AuditLogPath string `toml:"audit_log_path" json:"audit_log_path" yaml:"audit_log_path"`
	// AuditDisabled turns the audit trail off.
	AuditDisabled bool `toml:"audit_disabled" json:"audit_disabled" yaml:"audit_disabled"`
}

// StorageConfig locates the encrypted credential store.
type StorageConfig struct {
	// Path is the SQLite file (empty = ~/.receipta/credentials.db).
	Path string `toml:"path" json:"path" yaml:"path"`
	// Passphrase unlocks the store. Empty means use KeyFile.
	Passphrase string `toml:"passphrase" json:"passphrase" yaml:"passphrase"`
	// KeyFile holds a generated passphrase (empty = ~/.receipta/store.key).
	KeyFile string `toml:"key_file" json:"key_file" yaml:"key_file"`
}

// LogConfig configures the application log.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level" yaml:"level"`
	// File is the log file (empty = ~/.receipta/receipta.log, "-" = off).
	File string `toml:"file" json:"file" yaml:"file"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" json:"theme" yaml:"theme"`
	// Mouse enables mouse reporting so pointer activity keeps the session alive.
	Mouse bool `toml:"mouse" json:"mouse" yaml:"mouse"`
}

// Defaults.
const (
	DefaultIdleTimeoutMs      = 180000
	DefaultLogoutTimeoutSecs  = 10
	DefaultRequestTimeoutSecs = 15
	DefaultLogLevel           = "info"
	DefaultTheme              = "dark"
)

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			RequestTimeoutSecs: DefaultRequestTimeoutSecs,
		},
		Session: SessionConfig{
			IdleTimeoutMs:     DefaultIdleTimeoutMs,
			LoginPath:         route.PathLogin,
			PublicRoutes:      append([]string(nil), route.DefaultPublicPaths...),
			LogoutTimeoutSecs: DefaultLogoutTimeoutSecs,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		UI: UIConfig{
			Theme: DefaultTheme,
			Mouse: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the receipta directory, ~/.receipta unless RECEIPTA_HOME
// is set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("RECEIPTA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".receipta"), nil
}

// ConfigPath returns the path of the primary (TOML) config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// candidateNames are tried in order by Load.
var candidateNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// FindConfigFile returns the first existing config file in the config
// directory, or "" when there is none.
func FindConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range candidateNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// ensureSecurePermissions tightens a config file to 0600; it may hold the
// anon key and store passphrase.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load finds the config file in the config directory and loads it. Without
// a config file the defaults are used. Environment overrides are applied
// before validation.
func Load() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		return LoadFromPath(path)
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. The format follows
// the extension: .json, .yaml/.yml, anything else is TOML.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := decode(cfg, path, data); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decode(cfg *Config, path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to decode TOML: %w", err)
		}
	}
	return nil
}

// fillDefaults fills in zero values that have a non-zero default.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.RequestTimeoutSecs == 0 {
		cfg.Backend.RequestTimeoutSecs = defaults.Backend.RequestTimeoutSecs
	}
	cfg.Backend.URL = strings.TrimRight(strings.TrimSpace(cfg.Backend.URL), "/")

	if cfg.Session.IdleTimeoutMs == 0 {
		cfg.Session.IdleTimeoutMs = defaults.Session.IdleTimeoutMs
	}
	if cfg.Session.LoginPath == "" {
		cfg.Session.LoginPath = defaults.Session.LoginPath
	}
	if len(cfg.Session.PublicRoutes) == 0 {
		cfg.Session.PublicRoutes = defaults.Session.PublicRoutes
	}
	if cfg.Session.LogoutTimeoutSecs == 0 {
		cfg.Session.LogoutTimeoutSecs = defaults.Session.LogoutTimeoutSecs
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# receipta configuration file\n")
	buf.WriteString("# Generated by receipta - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveYAML writes the configuration as YAML with 0600 permissions.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors listing
// every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.url",
				Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host", c.Backend.URL),
			})
		}
	}
	if c.Backend.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.request_timeout_secs", Message: "must not be negative"})
	}

	if c.Session.IdleTimeoutMs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "session.idle_timeout_ms",
			Message: fmt.Sprintf("must be positive, got %d", c.Session.IdleTimeoutMs),
		})
	}
	if c.Session.LogoutTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "session.logout_timeout_secs", Message: "must not be negative"})
	}
	for _, p := range c.Session.PublicRoutes {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, ValidationError{
				Field:   "session.public_routes",
				Message: fmt.Sprintf("route '%s' must start with /", p),
			})
		}
	}
	if c.Classifier().Classify(c.Session.LoginPath) != route.Public {
		errs = append(errs, ValidationError{
			Field:   "session.login_path",
			Message: fmt.Sprintf("'%s' must be one of session.public_routes", c.Session.LoginPath),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be dark or light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies RECEIPTA_* environment variables:
//   - RECEIPTA_BACKEND_URL: overrides backend.url
//   - RECEIPTA_ANON_KEY: overrides backend.anon_key
//   - RECEIPTA_IDLE_TIMEOUT_MS: overrides session.idle_timeout_ms
//   - RECEIPTA_LOG_LEVEL: overrides log.level
//   - RECEIPTA_STORE_PASSPHRASE: overrides storage.passphrase
//
// Unparseable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RECEIPTA_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("RECEIPTA_ANON_KEY"); v != "" {
		c.Backend.AnonKey = v
	}
	if v := os.Getenv("RECEIPTA_IDLE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Session.IdleTimeoutMs = ms
		}
	}
	if v := os.Getenv("RECEIPTA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RECEIPTA_STORE_PASSPHRASE"); v != "" {
		c.Storage.Passphrase = v
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// IdleTimeout returns the idle window as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutMs) * time.Millisecond
}

// LogoutTimeout returns the bound on the idle logout call.
func (c *Config) LogoutTimeout() time.Duration {
	return time.Duration(c.Session.LogoutTimeoutSecs) * time.Second
}

// RequestTimeout returns the per-request backend timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutSecs) * time.Second
}

// Classifier builds a route classifier from the public route allow-list.
func (c *Config) Classifier() *route.Classifier {
	return route.NewClassifier(c.Session.PublicRoutes...)
}

// StorePath returns the credential store path, defaulting into ConfigDir.
func (c *Config) StorePath() string {
	return c.inConfigDir(c.Storage.Path, "credentials.db")
}

// KeyFilePath returns the store key file path, defaulting into ConfigDir.
func (c *Config) KeyFilePath() string {
	return c.inConfigDir(c.Storage.KeyFile, "store.key")
}

// LogFilePath returns the application log path, or "" when logging is off.
func (c *Config) LogFilePath() string {
	if c.Log.File == "-" {
		return ""
	}
	return c.inConfigDir(c.Log.File, "receipta.log")
}

// AuditLogPath returns the audit trail path, or "" when auditing is off.
func (c *Config) AuditLogPath() string {
	if c.Session.AuditDisabled {
		return ""
	}
	return c.inConfigDir(c.Session.AuditLogPath, "audit.log")
}

func (c *Config) inConfigDir(value, name string) string {
	if value != "" {
		return value
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(".receipta", name)
	}
	return filepath.Join(dir, name)
}

// =============================================================================
// GET (DOT NOTATION)
// =============================================================================

// Get retrieves a value by its file key, e.g. "session.idle_timeout_ms".
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return nil, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds the struct field whose toml tag is name.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// =============================================================================
// CLONE / STRING
// =============================================================================

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Session.PublicRoutes = append([]string(nil), c.Session.PublicRoutes...)
	return &clone
}

// Redacted returns a copy with the anon key and passphrase masked.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.Backend.AnonKey != "" {
		safe.Backend.AnonKey = "[REDACTED]"
	}
	if safe.Storage.Passphrase != "" {
		safe.Storage.Passphrase = "[REDACTED]"
	}
	return safe
}

// String returns the redacted config as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.Redacted()); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
