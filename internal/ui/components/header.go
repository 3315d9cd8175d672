// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// DefaultTitle is shown until a report names its subject.
const DefaultTitle = "八字能量解读"

// Header is the title bar.
type Header struct {
	Title   string
	Service string
	Width   int
	theme   *styles.Theme
}

// NewHeader creates a header with the default title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: DefaultTitle,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header on one line: title left, service right.
func (h *Header) View() string {
	title := h.Title
	if title == "" {
		title = DefaultTitle
	}
	if h.theme == nil {
		if h.Service == "" {
			return title
		}
		return title + "  " + h.Service
	}

	left := h.theme.HeaderTitle.Render(title)
	right := h.theme.HeaderSubtitle.Render(h.Service)

	inner := h.Width - 6
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if h.Service != "" && gap >= 2 {
		line = left + strings.Repeat(" ", gap) + right
	}
	return h.theme.Header.Width(max(h.Width-2, lipgloss.Width(line)+4)).Render(line)
}
