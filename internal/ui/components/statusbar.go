// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bazi-report-tui/internal/request"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom line: view state and form settings on the left,
// key hints on the right.
type StatusBar struct {
	State    string
	Mode     request.Mode
	Backend  request.Backend
	Variant  string
	RemoteAI string
	Hints    string
	Width    int
	theme    *styles.Theme
}

// NewStatusBar creates a status bar with default settings.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Mode:    request.ModeGeneral,
		Backend: request.BackendLocal,
		Width:   80,
		theme:   theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

func (s *StatusBar) style(pick func(*styles.Theme) lipgloss.Style) lipgloss.Style {
	if s.theme == nil {
		return lipgloss.NewStyle()
	}
	return pick(s.theme)
}

// segments returns the left-hand items, most important first.
func (s *StatusBar) segments() []string {
	var parts []string
	if s.State != "" {
		parts = append(parts, s.style(func(t *styles.Theme) lipgloss.Style { return t.HeaderTitle }).Render(s.State))
	}
	parts = append(parts, s.Mode.Label())

	backend := s.style(func(t *styles.Theme) lipgloss.Style { return t.BackendLocal })
	if s.Backend == request.BackendRemoteAPI {
		backend = s.style(func(t *styles.Theme) lipgloss.Style { return t.BackendRemote })
	}
	parts = append(parts, backend.Render(s.Backend.Label()))

	if s.Variant != "" {
		parts = append(parts, s.Variant)
	}
	if s.RemoteAI != "" {
		parts = append(parts, "AI: "+s.RemoteAI)
	}
	return parts
}

// View renders the bar. Narrow terminals drop the hints, then the trailing
// segments, until the line fits.
func (s *StatusBar) View() string {
	parts := s.segments()
	sep := " │ "
	left := strings.Join(parts, sep)

	hints := s.style(func(t *styles.Theme) lipgloss.Style { return t.ShortcutDesc }).Render(s.Hints)
	width := s.Width - 2
	if width < 10 {
		width = 10
	}

	line := left
	gap := width - lipgloss.Width(left) - lipgloss.Width(hints)
	switch {
	case s.Hints != "" && gap >= 2:
		line = left + strings.Repeat(" ", gap) + hints
	default:
		for len(parts) > 1 && lipgloss.Width(strings.Join(parts, sep)) > width {
			parts = parts[:len(parts)-1]
		}
		line = strings.Join(parts, sep)
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}

	return s.style(func(t *styles.Theme) lipgloss.Style { return t.StatusBar }).Render(line)
}
