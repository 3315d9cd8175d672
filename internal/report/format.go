// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/util"
)

// Geometry sizes derived graphics.
type Geometry struct {
	// BarWidth is the cell count of a full bar.
	BarWidth int
}

// DefaultGeometry matches the config default.
var DefaultGeometry = Geometry{BarWidth: 20}

func (g Geometry) barWidth() int {
	if g.BarWidth <= 0 {
		return DefaultGeometry.BarWidth
	}
	return g.BarWidth
}

// =============================================================================
// MARKDOWN WRITER
// =============================================================================

// md accumulates Markdown chunks. Consecutive field lines form one list;
// every other chunk is separated by a blank line.
type md struct {
	chunks []string
	list   []string
}

func (m *md) flush() {
	if len(m.list) > 0 {
		m.chunks = append(m.chunks, strings.Join(m.list, "\n"))
		m.list = nil
	}
}

func (m *md) add(chunk string) {
	m.flush()
	if strings.TrimSpace(chunk) != "" {
		m.chunks = append(m.chunks, chunk)
	}
}

// field writes "- **label**：value", using the placeholder for blanks.
func (m *md) field(label, value string) {
	if strings.TrimSpace(value) == "" {
		value = Placeholder
	}
	m.list = append(m.list, "- **"+label+"**："+inline(value))
}

// fieldOf writes v's text or the placeholder.
func (m *md) fieldOf(label string, v payload.Value) {
	m.field(label, v.TextOr(Placeholder))
}

// optional writes the field only when v has non-blank text.
func (m *md) optional(label string, v payload.Value) {
	if s := strings.TrimSpace(v.Text()); s != "" {
		m.field(label, s)
	}
}

func (m *md) heading(text string) { m.add("#### " + text) }

func (m *md) subheading(text string) { m.add("##### " + text) }

// para writes free text. Service text may carry **bold** and line breaks,
// both of which are valid Markdown already.
func (m *md) para(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = Placeholder
	}
	m.add(hardBreaks(text))
}

// paraOf writes v's text or the placeholder.
func (m *md) paraOf(v payload.Value) { m.para(v.Text()) }

func (m *md) quote(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = Placeholder
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	m.add(strings.Join(lines, "\n"))
}

// bullets writes items in order; an empty list writes the empty marker.
func (m *md) bullets(items []string) {
	if len(items) == 0 {
		m.add(EmptyList)
		return
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + inline(it)
	}
	m.add(strings.Join(lines, "\n"))
}

func (m *md) numbered(items []string) {
	if len(items) == 0 {
		m.add(EmptyList)
		return
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, inline(it))
	}
	m.add(strings.Join(lines, "\n"))
}

func (m *md) table(header []string, rows [][]string) {
	if len(rows) == 0 {
		m.add(EmptyList)
		return
	}
	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for _, c := range cells {
			sb.WriteString(" ")
			sb.WriteString(cell(c))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	writeRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, r := range rows {
		writeRow(r)
	}
	m.add(strings.TrimRight(sb.String(), "\n"))
}

// code writes a fenced text block; alignment inside survives rendering.
func (m *md) code(lines []string) {
	if len(lines) == 0 {
		return
	}
	m.add("```text\n" + strings.Join(lines, "\n") + "\n```")
}

func (m *md) String() string {
	m.flush()
	if len(m.chunks) == 0 {
		return EmptyList
	}
	return strings.Join(m.chunks, "\n\n")
}

// inline collapses line breaks so a value stays inside its list item.
func inline(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}

// hardBreaks turns single newlines into Markdown hard breaks.
func hardBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	paras := strings.Split(s, "\n\n")
	for i, p := range paras {
		paras[i] = strings.ReplaceAll(strings.TrimSpace(p), "\n", "  \n")
	}
	return strings.Join(paras, "\n\n")
}

func cell(s string) string {
	s = strings.ReplaceAll(inline(s), "|", `\|`)
	if s == "" {
		return Placeholder
	}
	return s
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// bar renders value relative to peak as width cells.
func bar(value, peak float64, width int) string {
	filled := 0
	if peak > 0 && value > 0 {
		filled = int(math.Round(value / peak * float64(width)))
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ratioBar renders a 0..1 ratio as width cells.
func ratioBar(ratio float64, width int) string {
	return bar(clamp01(ratio), 1, width)
}

// percentOf formats part/total with one decimal; a zero total yields 0.0%.
func percentOf(part, total float64) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", part/total*100)
}

// ratioPercent formats a 0..1 ratio with the given decimals. Whole
// percentages round half away from zero.
func ratioPercent(ratio float64, decimals int) string {
	pct := ratio * 100
	if decimals == 0 {
		pct = math.Round(pct)
	}
	return fmt.Sprintf("%.*f%%", decimals, pct)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkline scales values between their min and max onto eight levels.
// A flat series sits on the middle level.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := len(sparkLevels) / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkLevels)-1)))
		}
		out[i] = sparkLevels[idx]
	}
	return string(out)
}

// formatNumber drops a trailing ".0" for whole numbers.
func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%g", f)
}

// alignRows pads the first column of each row to a common display width.
func alignRows(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) {
				if w := util.StringWidth(c); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		parts := make([]string, len(r))
		for j, c := range r {
			switch {
			case j == len(r)-1:
				parts[j] = c
			case j == 0:
				parts[j] = util.PadRight(c, widths[j])
			default:
				parts[j] = util.PadLeft(c, widths[j])
			}
		}
		out[i] = strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	return out
}
