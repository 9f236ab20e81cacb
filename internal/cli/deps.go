// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/receipta-tui/internal/audit"
	"github.com/jeranaias/receipta-tui/internal/auth"
	"github.com/jeranaias/receipta-tui/internal/config"
	"github.com/jeranaias/receipta-tui/internal/credstore"
	"github.com/jeranaias/receipta-tui/internal/guard"
	"github.com/jeranaias/receipta-tui/internal/logging"
)

// loadConfig loads the file named by --config, or the default config file.
// It also returns the path the config lives at (which may not exist yet).
func loadConfig(flags *globalFlags) (*config.Config, string, error) {
	if flags.configPath != "" {
		cfg, err := config.LoadFromPath(flags.configPath)
		return cfg, flags.configPath, err
	}

	path, err := config.FindConfigFile()
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		if path, err = config.ConfigPath(); err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.Load()
	return cfg, path, err
}

// deps holds the long-lived dependencies a command needs.
type deps struct {
	cfg     *config.Config
	cfgPath string
	log     *log.Logger
	logFile io.Closer
	audit   *audit.Logger
	store   *credstore.Store
	client  *auth.Client
	session *auth.Session
	watcher *config.Watcher
}

// openDeps loads config and opens the log, audit trail and credential
// store. The audit trail is optional: failing to open it is logged, not
// fatal.
func openDeps(flags *globalFlags) (*deps, error) {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := logging.Open(cfg.LogFilePath(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	rt := &deps{cfg: cfg, cfgPath: path, log: logger, logFile: logFile}

	if p := cfg.AuditLogPath(); p != "" {
		al, err := audit.NewLogger(p)
		if err != nil {
			logger.Warn("audit trail unavailable", "path", p, "err", err)
		} else {
			rt.audit = al
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.store = store

	rt.client = auth.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey).WithTimeout(cfg.RequestTimeout())
	rt.session = auth.NewSession(rt.client, store, logger)
	return rt, nil
}

// openStore opens the credential store with the configured passphrase, or
// with the generated key file when none is configured.
func openStore(cfg *config.Config) (*credstore.Store, error) {
	passphrase := cfg.Storage.Passphrase
	if passphrase == "" {
		key, err := credstore.LoadOrCreateKeyFile(cfg.KeyFilePath())
		if err != nil {
			return nil, err
		}
		passphrase = key
	}

	store, err := credstore.Open(cfg.StorePath(), passphrase)
	if errors.Is(err, credstore.ErrWrongPassphrase) {
		return nil, fmt.Errorf("%w: check storage.passphrase or %s", err, cfg.KeyFilePath())
	}
	return store, err
}

// auditor returns the audit trail as a guard.Auditor, or nil. A nil
// *audit.Logger must not become a non-nil interface.
func (rt *deps) auditor() guard.Auditor {
	if rt.audit == nil {
		return nil
	}
	return rt.audit
}

// record writes an audit event outside a guard, e.g. for CLI logout.
func (rt *deps) record(event string, metadata map[string]string) {
	if rt.audit == nil {
		return
	}
	if err := rt.audit.LogEvent("cli", event, metadata); err != nil {
		rt.log.Warn("audit write failed", "err", err)
	}
}

// configExists reports whether the config file is on disk.
func (rt *deps) configExists() bool {
	_, err := os.Stat(rt.cfgPath)
	return err == nil
}

// Close releases everything openDeps opened.
func (rt *deps) Close() error {
	var errs []error
	if rt.watcher != nil {
		errs = append(errs, rt.watcher.Close())
	}
	if rt.store != nil {
		errs = append(errs, rt.store.Close())
	}
	if rt.audit != nil {
		errs = append(errs, rt.audit.Close())
	}
	if rt.logFile != nil {
		errs = append(errs, rt.logFile.Close())
	}
	return errors.Join(errs...)
}
