// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and watches the bazi client configuration.
//
// # Key Types
//
//   - Config: complete settings tree (service, report, form, export, ui, logging)
//   - ValidationError / ValidateErrors: aggregated validation failures
//   - Watcher: fsnotify-backed hot reload of the config file
//
// # Configuration Precedence
//
// Highest first:
//   - Environment variables (BAZI_*)
//   - ~/.bazi/config.toml (or the path given with --config)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.Service.Timeout()
//
// There is no process-wide instance. Callers pass the *Config they loaded.
package config
