// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/payload"
)

// =============================================================================
// ANALYSIS MESSAGES
// =============================================================================

// analysisDoneMsg carries the outcome of one submission.
type analysisDoneMsg struct {
	Seq    uint64
	Result payload.Value
	Err    error
}

// watchdogMsg fires when a submission has been in flight for longer than the
// service timeout plus grace.
type watchdogMsg struct {
	Seq uint64
}

// =============================================================================
// SIDE CHANNEL MESSAGES
// =============================================================================

// exportDoneMsg reports a remote PDF export saved to disk.
type exportDoneMsg struct {
	Path string
	Err  error
}

// saveDoneMsg reports a local document export.
type saveDoneMsg struct {
	Path string
	Err  error
}

// remoteAIStatusMsg carries a remote AI status probe.
type remoteAIStatusMsg struct {
	Status client.RemoteAIStatus
	Err    error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// configReloadedMsg carries a config file that changed on disk and passed
// validation.
type configReloadedMsg struct {
	Config *config.Config
}

// configErrorMsg reports a config file that changed but failed to load.
type configErrorMsg struct {
	Err error
}

// configClosedMsg means the watcher stopped.
type configClosedMsg struct{}
