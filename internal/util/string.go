// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: widths come from go-runewidth so 木/火 labels and full-width
// punctuation count as two columns.

// StringWidth returns the number of terminal columns s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads s with spaces until it is width columns wide.
// Strings already at or beyond width are returned unchanged.
func PadRight(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// PadLeft is PadRight for right-aligned columns such as counts.
func PadLeft(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}

// TruncateWidth cuts s to at most maxWidth columns, ending in "..." when
// something was removed and there is room for it.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// TruncateRunes truncates to maxRunes characters with an ellipsis. Used where
// a limit is stated in characters rather than columns (question previews).
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}
