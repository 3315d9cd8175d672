// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for CLI output.
//
// Colors are disabled for non-TTY output and honour NO_COLOR and
// FORCE_COLOR.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// init configures lipgloss color profile based on terminal capabilities.
// USABILITY: TTY detection for proper terminal handling
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cinnabar).
			MarginBottom(1)

	// LabelStyle is used for field labels. CJK labels count double, so
	// the width is in cells.
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(14)

	// ValueStyle is used for regular values and text
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	// SuccessStyle is used for success messages and OK statuses
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Jade).
			Bold(true)

	// ErrorStyle is used for error messages and failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// WarningStyle is used for warnings and cautions
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Gold)

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// PromptStyle is the `bazi prompt` line prefix
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)
)

// =============================================================================
// HELPER FUNCTIONS FOR COMMON PATTERNS
// =============================================================================

// RenderSeparator renders a horizontal separator line.
func RenderSeparator(width int) string {
	if width <= 0 {
		width = 40
	}
	return DimStyle.Render(strings.Repeat("─", width))
}

// RenderKeyValue renders one "label  value" line.
func RenderKeyValue(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
