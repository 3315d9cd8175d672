// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// =============================================================================
// RAW PAYLOAD VIEW
// =============================================================================

// RawView shows the analysis result as syntax-highlighted JSON with line
// numbers. It is the "show me what the service sent" escape hatch when a
// section renders oddly.
type RawView struct {
	theme *styles.Theme
	lines []string
}

// NewRawView highlights result once; Render only lays it out.
func NewRawView(theme *styles.Theme, result payload.Value) RawView {
	data, err := result.JSON()
	if err != nil || !result.Has() {
		data = []byte("null")
	}

	profile := termenv.Ascii
	dark := true
	if theme != nil {
		profile = theme.ColorProfile
		dark = theme.IsDark
	}
	return RawView{
		theme: theme,
		lines: strings.Split(HighlightJSON(string(data), profile, dark), "\n"),
	}
}

// LineCount returns the number of JSON lines.
func (r RawView) LineCount() int {
	return len(r.lines)
}

// Render lays the view out for width columns.
func (r RawView) Render(width int) string {
	base := lipgloss.NewStyle()
	if r.theme != nil {
		base = r.theme.Renderer().NewStyle()
	}
	lineNum := base.
		Foreground(styles.TextMuted).
		Width(len(strconv.Itoa(len(r.lines)))).
		Align(lipgloss.Right).
		MarginRight(1)

	rendered := make([]string, len(r.lines))
	for i, line := range r.lines {
		rendered[i] = lineNum.Render(strconv.Itoa(i+1)) + line
	}
	content := strings.Join(rendered, "\n")

	if r.theme == nil {
		return content
	}
	maxWidth := width - 2
	if maxWidth < 20 {
		maxWidth = 20
	}
	return r.theme.RawFrame.MaxWidth(maxWidth).Render(content)
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// HighlightJSON colors src for the given terminal profile. Ascii terminals
// and highlighting failures get src back unchanged.
func HighlightJSON(src string, profile termenv.Profile, dark bool) string {
	formatterName := ""
	switch profile {
	case termenv.TrueColor:
		formatterName = "terminal16m"
	case termenv.ANSI256:
		formatterName = "terminal256"
	case termenv.ANSI:
		formatterName = "terminal16"
	default:
		return src
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github"
	if dark {
		styleName = "monokai"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
