// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// =============================================================================
// LOADING INDICATOR
// =============================================================================

// LoadingIndicator is the spinner shown while an analysis is in flight. It
// cycles the step captions from styles.LoadingSteps.
type LoadingIndicator struct {
	spinner spinner.Model
	theme   *styles.Theme

	startTime time.Time
	isActive  bool
	detail    string

	now func() time.Time
}

// NewLoadingIndicator creates an inactive indicator.
func NewLoadingIndicator(theme *styles.Theme) LoadingIndicator {
	frames := styles.TaijiSpinner
	if theme != nil && theme.ColorProfile == termenv.Ascii {
		frames = styles.LineSpinner
	}
	s := spinner.New(spinner.WithSpinner(spinner.Spinner{
		Frames: frames.Frames,
		FPS:    frames.Duration(),
	}))
	if theme != nil {
		s.Style = theme.Spinner
	}
	return LoadingIndicator{
		spinner: s,
		theme:   theme,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (l *LoadingIndicator) SetClock(now func() time.Time) {
	l.now = now
}

// SetDetail sets a line shown under the caption, such as the request summary.
func (l *LoadingIndicator) SetDetail(detail string) {
	l.detail = detail
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the indicator and returns the first spinner tick.
func (l *LoadingIndicator) Start() tea.Cmd {
	l.isActive = true
	l.startTime = l.now()
	return l.spinner.Tick
}

// Stop deactivates the indicator.
func (l *LoadingIndicator) Stop() {
	l.isActive = false
	l.detail = ""
}

// IsActive reports whether the indicator is running.
func (l LoadingIndicator) IsActive() bool {
	return l.isActive
}

// Elapsed returns the time since Start.
func (l LoadingIndicator) Elapsed() time.Duration {
	if l.startTime.IsZero() {
		return 0
	}
	return l.now().Sub(l.startTime)
}

// Step returns the index of the current caption.
func (l LoadingIndicator) Step() int {
	return styles.StepAt(l.Elapsed())
}

// Caption returns the current step caption.
func (l LoadingIndicator) Caption() string {
	return styles.LoadingSteps[l.Step()]
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update advances the spinner. Ticks arriving after Stop end the tick loop.
func (l LoadingIndicator) Update(msg tea.Msg) (LoadingIndicator, tea.Cmd) {
	if !l.isActive {
		return l, nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner, caption, elapsed time and step checklist.
func (l LoadingIndicator) View() string {
	if !l.isActive {
		return ""
	}

	caption := l.Caption() + "..."
	timer := " (" + formatElapsed(l.Elapsed()) + ")"
	steps := styles.RenderSteps(l.Step())

	if l.theme != nil {
		caption = l.theme.LoadingCaption.Render(caption)
		timer = l.theme.ShortcutDesc.Render(timer)
		steps = l.theme.LoadingSteps.Render(steps)
	}

	out := l.spinner.View() + " " + caption + timer
	if l.detail != "" {
		out += "\n" + l.detail
	}
	return out + "\n\n" + steps
}

// formatElapsed formats a duration as "12s" or "1m 5s".
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return strconv.Itoa(seconds) + "s"
	}
	return strconv.Itoa(seconds/60) + "m " + strconv.Itoa(seconds%60) + "s"
}
