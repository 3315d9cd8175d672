// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME TESTS
// =============================================================================

func TestNewTheme_ForcedModes(t *testing.T) {
	if !NewTheme("dark").IsDark {
		t.Error(`NewTheme("dark").IsDark = false`)
	}
	if NewTheme("light").IsDark {
		t.Error(`NewTheme("light").IsDark = true`)
	}
	if !NewTheme("DARK").IsDark {
		t.Error("mode should be case-insensitive")
	}
}

func TestThemeStylesInitialized(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"FormBox", theme.FormBox},
		{"FormLabelFocused", theme.FormLabelFocused},
		{"ToggleActive", theme.ToggleActive},
		{"Spinner", theme.Spinner},
		{"ResultFrame", theme.ResultFrame},
		{"RawFrame", theme.RawFrame},
		{"StatusBar", theme.StatusBar},
		{"NoticeError", theme.NoticeError},
	}

	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style lost its content", s.name)
		}
	}
}

func TestThemeGlamourStyle(t *testing.T) {
	tests := []struct {
		mode string
		pref string
		want string
	}{
		{"dark", "auto", "dark"},
		{"light", "auto", "light"},
		{"light", "", "light"},
		{"dark", "dracula", "dracula"},
		{"dark", "notty", "notty"},
	}
	for _, tc := range tests {
		if got := NewTheme(tc.mode).GlamourStyle(tc.pref); got != tc.want {
			t.Errorf("GlamourStyle(%q) on %s = %q, want %q", tc.pref, tc.mode, got, tc.want)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		if got := theme.GetLayoutMode(); got != tc.want {
			t.Errorf("GetLayoutMode() with width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}

// =============================================================================
// COLOR TESTS
// =============================================================================

func TestElementColor(t *testing.T) {
	tests := []struct {
		in   string
		want lipgloss.AdaptiveColor
	}{
		{"wood", WoodColor},
		{"Fire", FireColor},
		{"土", EarthColor},
		{" metal ", MetalColor},
		{"水", WaterColor},
		{"aether", TextSecondary},
		{"", TextSecondary},
	}
	for _, tc := range tests {
		if got := ElementColor(tc.in); got != tc.want {
			t.Errorf("ElementColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRenderStatus_CarriesIndicator(t *testing.T) {
	if got := RenderStatus(true, "已保存"); !strings.Contains(got, "[OK] 已保存") {
		t.Errorf("RenderStatus(true) = %q", got)
	}
	if got := RenderStatus(false, "失败"); !strings.Contains(got, "[X] 失败") {
		t.Errorf("RenderStatus(false) = %q", got)
	}
	if got := RenderWarning("注意"); !strings.Contains(got, "[!] 注意") {
		t.Errorf("RenderWarning = %q", got)
	}
	if got := RenderInfo("提示"); !strings.Contains(got, "[i] 提示") {
		t.Errorf("RenderInfo = %q", got)
	}
}

// =============================================================================
// LOADING STEP TESTS
// =============================================================================

func TestStepAt(t *testing.T) {
	last := len(LoadingSteps) - 1
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{-time.Second, 0},
		{0, 0},
		{StepInterval - time.Millisecond, 0},
		{StepInterval, 1},
		{3*StepInterval + 10*time.Millisecond, 3},
		{time.Hour, last},
	}
	for _, tc := range tests {
		if got := StepAt(tc.elapsed); got != tc.want {
			t.Errorf("StepAt(%v) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestRenderSteps(t *testing.T) {
	out := RenderSteps(2)
	lines := strings.Split(out, "\n")
	if len(lines) != len(LoadingSteps) {
		t.Fatalf("RenderSteps produced %d lines, want %d", len(lines), len(LoadingSteps))
	}
	if lines[0] != "[OK] 解析八字" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[2] != "[>] 格局判定" {
		t.Errorf("line 2 = %q", lines[2])
	}
	if lines[3] != "[ ] 寒燥分析" {
		t.Errorf("line 3 = %q", lines[3])
	}
}

func TestSpinnerConfigDuration(t *testing.T) {
	if got := TaijiSpinner.Duration(); got != time.Second/8 {
		t.Errorf("TaijiSpinner.Duration() = %v", got)
	}
	if got := (SpinnerConfig{}).Duration(); got != time.Second {
		t.Errorf("zero FPS Duration() = %v, want 1s", got)
	}
}
