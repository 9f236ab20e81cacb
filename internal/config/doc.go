// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and watches the receipta configuration.
//
// TOML is the primary format; YAML and JSON are accepted by extension.
//
// # Configuration Precedence
//
//   - Environment variables (RECEIPTA_*)
//   - ~/.receipta/config.toml (or config.yaml, config.yml, config.json)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.IdleTimeout()
//
// A Watcher reloads the file when it changes so a new idle timeout can be
// applied without restarting.
package config
