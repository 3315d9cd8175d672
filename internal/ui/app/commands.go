// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/export"
	"github.com/jeranaias/bazi-report-tui/internal/report"
	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// watchdogGrace is added to the service timeout before the watchdog fires,
// so the client's own deadline normally reports first.
const watchdogGrace = 2 * time.Second

// remoteStatusTimeout bounds the remote AI status probe.
const remoteStatusTimeout = 10 * time.Second

// =============================================================================
// IN-FLIGHT TRACKING (THREAD-SAFE)
// =============================================================================

// inFlight holds the cancel function of each running submission.
// IMPORTANT: use as a pointer in Model so Bubble Tea's value copies share it.
type inFlight struct {
	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
}

func newInFlight() *inFlight {
	return &inFlight{cancels: make(map[uint64]context.CancelFunc)}
}

// start registers a submission and returns its context.
func (f *inFlight) start(parent context.Context, seq uint64, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(parent, timeout)
	f.mu.Lock()
	f.cancels[seq] = cancel
	f.mu.Unlock()
	return ctx
}

// done releases seq. Safe to call more than once.
func (f *inFlight) done(seq uint64) {
	f.mu.Lock()
	cancel, ok := f.cancels[seq]
	delete(f.cancels, seq)
	f.mu.Unlock()
	if ok {
		cancel()
	}
}

// cancelAll aborts every running submission.
func (f *inFlight) cancelAll() {
	f.mu.Lock()
	cancels := f.cancels
	f.cancels = make(map[uint64]context.CancelFunc)
	f.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// count is the number of running submissions.
func (f *inFlight) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancels)
}

// =============================================================================
// ANALYSIS COMMANDS
// =============================================================================

// submitCmd sends req. The context must come from inFlight.start so that a
// superseding submission or quit can cancel it.
func submitCmd(ctx context.Context, svc Service, tracker *inFlight, seq uint64, req request.AnalysisRequest) tea.Cmd {
	return func() tea.Msg {
		defer tracker.done(seq)
		result, err := svc.Submit(ctx, req)
		return analysisDoneMsg{Seq: seq, Result: result, Err: err}
	}
}

// watchdogCmd fires watchdogMsg for seq after timeout plus grace.
func watchdogCmd(seq uint64, timeout time.Duration) tea.Cmd {
	return tea.Tick(timeout+watchdogGrace, func(time.Time) tea.Msg {
		return watchdogMsg{Seq: seq}
	})
}

// =============================================================================
// SIDE CHANNEL COMMANDS
// =============================================================================

// exportPDFCmd asks the service for a PDF of req and saves it.
func exportPDFCmd(ctx context.Context, svc Service, req request.AnalysisRequest, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		art, err := svc.Export(ctx, req)
		if err != nil {
			return exportDoneMsg{Err: err}
		}
		path, err := export.SaveArtifact(art.Filename, art.Data, opts)
		return exportDoneMsg{Path: path, Err: err}
	}
}

// saveCmd writes doc locally in format.
func saveCmd(doc report.Document, format string, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		exporter, err := export.ExporterFor(format, opts)
		if err != nil {
			return saveDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(doc, exporter, opts)
		return saveDoneMsg{Path: path, Err: err}
	}
}

// remoteStatusCmd probes the remote AI backend.
func remoteStatusCmd(ctx context.Context, svc Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, remoteStatusTimeout)
		defer cancel()
		st, err := svc.RemoteAIStatus(ctx)
		return remoteAIStatusMsg{Status: st, Err: err}
	}
}

// =============================================================================
// CONFIG WATCH
// =============================================================================

// waitForConfig blocks until the watcher publishes a config or an error.
// Re-issue it after each message to keep listening.
func waitForConfig(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case cfg, ok := <-w.Updates():
			if !ok {
				return configClosedMsg{}
			}
			return configReloadedMsg{Config: cfg}
		case err, ok := <-w.Errors():
			if !ok {
				return configClosedMsg{}
			}
			return configErrorMsg{Err: err}
		}
	}
}
