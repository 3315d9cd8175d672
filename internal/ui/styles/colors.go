// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Cinnabar - Brand color, headings, focus
var Cinnabar = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}

// CinnabarDeep - Darker cinnabar for backgrounds
var CinnabarDeep = lipgloss.AdaptiveColor{Light: "#7F1D1D", Dark: "#450A0A"}

// Jade - Success states, local backend
var Jade = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

// Gold - Warnings, remote backend
var Gold = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// Indigo - Info notices
var Indigo = lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#A5B4FC"}

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

var Surface = lipgloss.AdaptiveColor{Light: "#FFFBF5", Dark: "#1C1917"}
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5EFE6", Dark: "#141110"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E7DED0", Dark: "#3F3A36"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#292524", Dark: "#E7E5E4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#57534E", Dark: "#A8A29E"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#A8A29E", Dark: "#78716C"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1C1917"}

// =============================================================================
// FIVE ELEMENT COLORS
// =============================================================================

var (
	WoodColor  = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	FireColor  = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	EarthColor = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"}
	MetalColor = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#E5E7EB"}
	WaterColor = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
)

var elementColors = map[string]lipgloss.AdaptiveColor{
	"wood": WoodColor, "木": WoodColor,
	"fire": FireColor, "火": FireColor,
	"earth": EarthColor, "土": EarthColor,
	"metal": MetalColor, "金": MetalColor,
	"water": WaterColor, "水": WaterColor,
}

// ElementColor returns the color of an element given as code or label.
// Unknown elements get TextSecondary.
func ElementColor(element string) lipgloss.AdaptiveColor {
	e := strings.TrimSpace(element)
	if c, ok := elementColors[strings.ToLower(e)]; ok {
		return c
	}
	return TextSecondary
}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains text indicators for status states.
// ACCESSIBILITY: shapes carry the meaning for colorblind users.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
}

// StatusIndicators are ASCII-only for maximum terminal compatibility.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
}

func renderIndicator(color lipgloss.AdaptiveColor, indicator, message string) string {
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render(indicator + " " + message)
}

// RenderSuccess renders a success message with its indicator.
func RenderSuccess(message string) string {
	return renderIndicator(Jade, StatusIndicators.Success, message)
}

// RenderError renders an error message with its indicator.
func RenderError(message string) string {
	return renderIndicator(Rose, StatusIndicators.Error, message)
}

// RenderWarning renders a warning message with its indicator.
func RenderWarning(message string) string {
	return renderIndicator(Gold, StatusIndicators.Warning, message)
}

// RenderInfo renders an info message with its indicator.
func RenderInfo(message string) string {
	return renderIndicator(Indigo, StatusIndicators.Info, message)
}

// RenderStatus picks RenderSuccess or RenderError.
func RenderStatus(success bool, message string) string {
	if success {
		return RenderSuccess(message)
	}
	return RenderError(message)
}
