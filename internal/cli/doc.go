// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the bazi command-line interface.
//
// Running bazi with no subcommand starts the interactive TUI. The
// subcommands run a single analysis or side-channel call and exit.
//
// # Commands Overview
//
//   - analyze: build, submit and print one report
//   - prompt: ask for each field on the terminal, then analyze
//   - export: download the service-rendered PDF
//   - remote-ai status|configure: remote interpretation backend
//   - status: service health and remote AI status
//   - config show|path|init: configuration file management
//   - version: build information
//
// # Exit Codes
//
// Errors map to exit codes by category; see GetExitCode. Validation
// failures exit 2, configuration problems 3, network failures 5 and
// timeouts 8.
//
// Status, remote-ai, config show and version accept --json.
package cli
