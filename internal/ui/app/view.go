// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/report"
	"github.com/jeranaias/bazi-report-tui/internal/ui/components"
)

// chromeHeight is the rows taken by the header, help line and status bar
// around the result viewport.
const chromeHeight = 7

// MsgLoadingHint is shown under the loading indicator.
const MsgLoadingHint = "正在分析，请稍候"

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen for the controller's current state.
func (m Model) View() string {
	var body string
	switch m.ctrl.State() {
	case controller.StateLoading:
		body = m.loading.View() + "\n\n" + m.theme.FormHint.Render(MsgLoadingHint)
	case controller.StateResult:
		body = m.theme.ResultFrame.Render(m.viewport.View())
	default:
		body = m.form.view(m.theme, m.invalid, m.width)
	}

	parts := []string{m.header.View(), body}
	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		parts = append(parts, components.RenderToastStack(m.theme, toasts, min(m.width, 60)))
	}
	parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelpFor(m.ctrl.State())), m.status.View())
	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// stateLabel is the status bar name of a controller state.
func stateLabel(s controller.State) string {
	switch s {
	case controller.StateLoading:
		return "分析中"
	case controller.StateResult:
		return "结果"
	case controller.StateError:
		return "错误"
	default:
		return "输入"
	}
}

// syncStatus copies the current settings into the status bar.
func (m *Model) syncStatus() {
	m.status.State = stateLabel(m.ctrl.State())
	m.status.Mode = m.form.mode
	m.status.Backend = m.form.backend
	m.status.Variant = m.cfg.Report.Variant
	if m.remoteChecked {
		m.status.RemoteAI = m.remoteAI.Label()
	}
	if m.ctrl.State() == controller.StateResult && m.showRaw {
		m.status.Hints = "JSON"
	} else {
		m.status.Hints = ""
	}
}

// =============================================================================
// RESULT RENDERING
// =============================================================================

// rebuildRenderer creates the glamour renderer for the current theme and
// width. A failed renderer leaves the markdown unstyled.
func (m *Model) rebuildRenderer() {
	wrap := m.cfg.Report.WordWrap
	if m.width > 0 && m.width-6 < wrap {
		wrap = max(m.width-6, 20)
	}

	style := m.theme.GlamourStyle(m.cfg.UI.GlamourStyle)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.logger.Debug("glamour style unavailable", zap.String("style", style), zap.Error(err))
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("notty"),
			glamour.WithWordWrap(wrap),
		)
	}
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// refreshResult re-renders the shown result into the viewport.
func (m *Model) refreshResult() {
	if m.ctrl.State() != controller.StateResult {
		return
	}
	if m.showRaw {
		m.viewport.SetContent(components.NewRawView(m.theme, m.ctrl.Result()).Render(m.viewport.Width))
		return
	}
	doc, ok := m.ctrl.Document()
	if !ok {
		m.viewport.SetContent(report.NoResultsMessage)
		return
	}
	m.viewport.SetContent(m.renderMarkdown(doc.Markdown()))
}

func (m *Model) renderMarkdown(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		m.logger.Debug("markdown render failed", zap.Error(err))
		return md
	}
	return strings.TrimRight(out, "\n")
}
