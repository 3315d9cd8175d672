// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	renderer *lipgloss.Renderer

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormBox          lipgloss.Style
	FormLabel        lipgloss.Style
	FormLabelFocused lipgloss.Style
	FormHint         lipgloss.Style
	Toggle           lipgloss.Style
	ToggleActive     lipgloss.Style
	BackendLocal     lipgloss.Style
	BackendRemote    lipgloss.Style

	// ==========================================================================
	// LOADING STYLES
	// ==========================================================================

	Spinner        lipgloss.Style
	LoadingCaption lipgloss.Style
	LoadingSteps   lipgloss.Style

	// ==========================================================================
	// RESULT STYLES
	// ==========================================================================

	ResultFrame lipgloss.Style
	RawFrame    lipgloss.Style
	ErrorBox    lipgloss.Style

	// ==========================================================================
	// STATUS BAR AND NOTICES
	// ==========================================================================

	StatusBar     lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style
	NoticeInfo    lipgloss.Style
	NoticeError   lipgloss.Style
	NoticeSuccess lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks the
// terminal for its background.
func NewTheme(mode string) *Theme {
	renderer := lipgloss.NewRenderer(os.Stdout)
	colorProfile := renderer.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = renderer.HasDarkBackground()
	}
	renderer.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
		renderer:     renderer,
	}
	t.initStyles()
	return t
}

// Renderer returns the lipgloss renderer the theme's styles are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// GlamourStyle resolves the glamour style name for a configured preference.
// "auto" or empty follows the theme background.
func (t *Theme) GlamourStyle(pref string) string {
	switch strings.ToLower(strings.TrimSpace(pref)) {
	case "", "auto":
		if t.IsDark {
			return "dark"
		}
		return "light"
	default:
		return pref
	}
}

// ElementStyle returns a bold style in the element's color.
func (t *Theme) ElementStyle(element string) lipgloss.Style {
	return t.renderer.NewStyle().Foreground(ElementColor(element)).Bold(true)
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	r := t.renderer

	t.App = r.NewStyle().Padding(0, 1)

	// Header
	t.Header = r.NewStyle().
		Bold(true).
		Foreground(Cinnabar).
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cinnabar).
		Padding(0, 2)

	t.HeaderTitle = r.NewStyle().
		Bold(true).
		Foreground(Cinnabar)

	t.HeaderSubtitle = r.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Form
	t.FormBox = r.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 2)

	t.FormLabel = r.NewStyle().
		Foreground(TextSecondary).
		Width(12)

	t.FormLabelFocused = r.NewStyle().
		Foreground(Cinnabar).
		Bold(true).
		Width(12)

	t.FormHint = r.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Toggle = r.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ToggleActive = r.NewStyle().
		Foreground(TextInverse).
		Background(Cinnabar).
		Bold(true).
		Padding(0, 1)

	t.BackendLocal = r.NewStyle().
		Foreground(Jade).
		Bold(true)

	t.BackendRemote = r.NewStyle().
		Foreground(Gold).
		Bold(true)

	// Loading
	t.Spinner = r.NewStyle().
		Foreground(Cinnabar)

	t.LoadingCaption = r.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.LoadingSteps = r.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(2)

	// Result
	t.ResultFrame = r.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.RawFrame = r.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.ErrorBox = r.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	// Status bar and notices
	t.StatusBar = r.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = r.NewStyle().
		Foreground(Cinnabar).
		Bold(true)

	t.ShortcutDesc = r.NewStyle().
		Foreground(TextMuted)

	t.NoticeInfo = r.NewStyle().
		Foreground(Indigo).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Indigo).
		PaddingLeft(1)

	t.NoticeError = r.NewStyle().
		Foreground(Rose).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		PaddingLeft(1)

	t.NoticeSuccess = r.NewStyle().
		Foreground(Jade).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Jade).
		PaddingLeft(1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
