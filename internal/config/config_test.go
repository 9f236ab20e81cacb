// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/receipta-tui/internal/route"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RECEIPTA_HOME", dir)
	for _, k := range []string{
		"RECEIPTA_BACKEND_URL", "RECEIPTA_ANON_KEY", "RECEIPTA_IDLE_TIMEOUT_MS",
		"RECEIPTA_LOG_LEVEL", "RECEIPTA_STORE_PASSPHRASE",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.EqualValues(t, 180000, cfg.Session.IdleTimeoutMs)
	assert.Equal(t, 3*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, "/login", cfg.Session.LoginPath)
	assert.Equal(t, route.DefaultPublicPaths, cfg.Session.PublicRoutes)
	assert.Equal(t, 10*time.Second, cfg.LogoutTimeout())
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.UI.Mouse)
	assert.NoError(t, cfg.Validate())
}

func TestDefault_PublicRoutesAreCopied(t *testing.T) {
	cfg := Default()
	cfg.Session.PublicRoutes[0] = "/changed"
	assert.Equal(t, "/", route.DefaultPublicPaths[0])
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Session, cfg.Session)
}

// =============================================================================
// FORMATS
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
[backend]
url = "https://demo.supabase.co/"
anon_key = "anon"

[session]
idle_timeout_ms = 60000

[ui]
theme = "light"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://demo.supabase.co", cfg.Backend.URL)
	assert.Equal(t, "anon", cfg.Backend.AnonKey)
	assert.Equal(t, time.Minute, cfg.IdleTimeout())
	assert.Equal(t, "/login", cfg.Session.LoginPath, "unset keys keep defaults")
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.UI.Mouse)
}

func TestLoadFromPath_YAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
session:
  idle_timeout_ms: 5000
  login_path: /signin
  public_routes: ["/", "/signin"]
ui:
  mouse: false
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.IdleTimeout())
	assert.Equal(t, "/signin", cfg.Session.LoginPath)
	assert.Equal(t, []string{"/", "/signin"}, cfg.Session.PublicRoutes)
	assert.False(t, cfg.UI.Mouse)
}

func TestLoadFromPath_JSON(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{"session": {"idle_timeout_ms": 1500}, "log": {"level": "debug"}}`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.IdleTimeout())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_FindsYAMLWhenNoTOML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yml"), "session:\n  idle_timeout_ms: 42000\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.EqualValues(t, 42000, cfg.Session.IdleTimeoutMs)
}

func TestLoadFromPath_Malformed(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[session\nidle_timeout_ms = ")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_FixesPermissions(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_RejectsNegativeTimeout(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[session]\nidle_timeout_ms = -1\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "session.idle_timeout_ms", verrs[0].Field)
}

func TestValidate_LoginPathMustBePublic(t *testing.T) {
	cfg := Default()
	cfg.Session.LoginPath = "/dashboard"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.login_path")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Backend.URL = "ftp://nope"
	cfg.Session.IdleTimeoutMs = 0
	cfg.Session.PublicRoutes = []string{"login"}
	cfg.Log.Level = "loud"
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, f := range []string{"backend.url", "session.idle_timeout_ms", "session.public_routes", "session.login_path", "log.level", "ui.theme"} {
		assert.True(t, fields[f], "missing %s in %v", f, verrs)
	}
}

func TestValidateErrors_Error(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
	errs := ValidateErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	assert.Equal(t, "a: x; b: y", errs.Error())
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("RECEIPTA_BACKEND_URL", "http://localhost:54321")
	t.Setenv("RECEIPTA_ANON_KEY", "env-anon")
	t.Setenv("RECEIPTA_IDLE_TIMEOUT_MS", "200")
	t.Setenv("RECEIPTA_LOG_LEVEL", "debug")
	t.Setenv("RECEIPTA_STORE_PASSPHRASE", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:54321", cfg.Backend.URL)
	assert.Equal(t, "env-anon", cfg.Backend.AnonKey)
	assert.Equal(t, 200*time.Millisecond, cfg.IdleTimeout())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "pw", cfg.Storage.Passphrase)
}

func TestApplyEnvOverrides_IgnoresGarbage(t *testing.T) {
	isolate(t)
	t.Setenv("RECEIPTA_IDLE_TIMEOUT_MS", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.EqualValues(t, DefaultIdleTimeoutMs, cfg.Session.IdleTimeoutMs)
}

// =============================================================================
// SAVE / PATHS / GET
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.Backend.URL = "https://demo.supabase.co"
	cfg.Session.IdleTimeoutMs = 90000

	require.NoError(t, Save(cfg))

	path := filepath.Join(dir, "config.toml")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend.URL, loaded.Backend.URL)
	assert.Equal(t, 90*time.Second, loaded.IdleTimeout())
}

func TestSaveYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveYAML(Default(), path))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Session, cfg.Session)
}

func TestDerivedPaths(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	assert.Equal(t, filepath.Join(dir, "credentials.db"), cfg.StorePath())
	assert.Equal(t, filepath.Join(dir, "store.key"), cfg.KeyFilePath())
	assert.Equal(t, filepath.Join(dir, "receipta.log"), cfg.LogFilePath())
	assert.Equal(t, filepath.Join(dir, "audit.log"), cfg.AuditLogPath())

	cfg.Log.File = "-"
	cfg.Session.AuditDisabled = true
	assert.Empty(t, cfg.LogFilePath())
	assert.Empty(t, cfg.AuditLogPath())
}

func TestGet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("session.idle_timeout_ms")
	require.NoError(t, err)
	assert.EqualValues(t, 180000, v)

	v, err = cfg.Get("session.login_path")
	require.NoError(t, err)
	assert.Equal(t, "/login", v)

	_, err = cfg.Get("session.nope")
	assert.Error(t, err)
	_, err = cfg.Get("session.login_path.more")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestString_Redacts(t *testing.T) {
	cfg := Default()
	cfg.Backend.AnonKey = "super-secret-anon"
	cfg.Storage.Passphrase = "hunter2"

	s := cfg.String()
	assert.False(t, strings.Contains(s, "super-secret-anon"))
	assert.False(t, strings.Contains(s, "hunter2"))
	assert.Contains(t, s, "[REDACTED]")
	assert.Equal(t, "super-secret-anon", cfg.Backend.AnonKey, "original untouched")
}

func TestClassifier(t *testing.T) {
	cfg := Default()
	cfg.Session.PublicRoutes = []string{"/", "/signin"}
	c := cfg.Classifier()
	assert.Equal(t, route.Public, c.Classify("/signin"))
	assert.Equal(t, route.Protected, c.Classify("/login"))
}
