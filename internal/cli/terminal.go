// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the bazi CLI.
//
// USABILITY: TTY detection for proper terminal handling
//
// Interactive terminals get glamour-rendered reports and colour; piped
// output gets plain Markdown. NO_COLOR and FORCE_COLOR are respected.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// USABILITY: TTY detection for proper terminal handling
// =============================================================================

// IsTTY returns true if stdin is a terminal.
// Use this to determine if interactive prompts are possible.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width, or
// DefaultTerminalWidth when it cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled returns true if colored output should be used.
// See https://no-color.org/ for the NO_COLOR convention.
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		// NO_COLOR takes precedence (any non-empty value disables colors)
		if os.Getenv("NO_COLOR") != "" {
			colorsEnabled = false
			return
		}
		if os.Getenv("FORCE_COLOR") != "" {
			colorsEnabled = true
			return
		}
		colorsEnabled = IsStdoutTTY()
	})
	return colorsEnabled
}

// GetColorProfile returns Ascii for non-TTY output or when NO_COLOR is
// set, and the detected profile otherwise.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// INTERACTIVE INPUT HELPERS
// =============================================================================

// TTYRequiredError is returned when an operation requires a TTY but none is available.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation != "" {
		return "stdin is not a terminal; cannot " + e.Operation + " interactively"
	}
	return "stdin is not a terminal; interactive input not available"
}
