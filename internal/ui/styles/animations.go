// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"
)

// =============================================================================
// LOADING STEPS
// =============================================================================

// StepInterval is how long each loading caption stays on screen.
const StepInterval = 800 * time.Millisecond

// LoadingSteps are shown in order while an analysis is in flight, then held
// on the last one.
var LoadingSteps = []string{
	"解析八字",
	"五行统计",
	"格局判定",
	"寒燥分析",
	"病药判定",
	"大运分析",
	"智能解读",
}

// StepAt returns the index of the caption for elapsed. It never exceeds the
// last step.
func StepAt(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	i := int(elapsed / StepInterval)
	if i >= len(LoadingSteps) {
		return len(LoadingSteps) - 1
	}
	return i
}

// RenderSteps renders the checklist of steps with current in progress.
func RenderSteps(current int) string {
	var sb strings.Builder
	for i, step := range LoadingSteps {
		switch {
		case i < current:
			sb.WriteString(StatusIndicators.Success)
		case i == current:
			sb.WriteString("[>]")
		default:
			sb.WriteString(StatusIndicators.Pending)
		}
		sb.WriteString(" ")
		sb.WriteString(step)
		if i < len(LoadingSteps)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// =============================================================================
// SPINNER FRAMES
// =============================================================================

// SpinnerConfig holds the frames and rate of a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration of each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// TaijiSpinner cycles the eight trigrams.
var TaijiSpinner = SpinnerConfig{
	Frames: []string{"☰", "☱", "☲", "☳", "☴", "☵", "☶", "☷"},
	FPS:    8,
}

// LineSpinner is the ASCII fallback.
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}
