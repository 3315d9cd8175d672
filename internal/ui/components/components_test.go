// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/request"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// =============================================================================
// LOADING INDICATOR
// =============================================================================

func TestLoadingIndicator_Lifecycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLoadingIndicator(nil)
	l.SetClock(clock.now)

	if l.IsActive() || l.View() != "" {
		t.Fatal("new indicator should be inactive and render nothing")
	}

	if cmd := l.Start(); cmd == nil {
		t.Fatal("Start() should return the first tick")
	}
	if got := l.Caption(); got != "解析八字" {
		t.Errorf("Caption() at start = %q", got)
	}

	clock.advance(1700 * time.Millisecond)
	if got := l.Caption(); got != "格局判定" {
		t.Errorf("Caption() after 1.7s = %q, want 格局判定", got)
	}
	l.SetDetail("张三 男")
	view := l.View()
	for _, want := range []string{"格局判定...", "(1s)", "张三 男", "[OK] 解析八字", "[>] 格局判定"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	l.Stop()
	if l.View() != "" {
		t.Error("stopped indicator should render nothing")
	}
	if _, cmd := l.Update(nil); cmd != nil {
		t.Error("Update() after Stop should not keep ticking")
	}
}

func TestLoadingIndicator_HoldsLastStep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	l := NewLoadingIndicator(nil)
	l.SetClock(clock.now)
	l.Start()
	clock.advance(2 * time.Minute)

	if got := l.Caption(); got != "智能解读" {
		t.Errorf("Caption() = %q, want the last step", got)
	}
	if !strings.Contains(l.View(), "(2m 0s)") {
		t.Errorf("View() should show minutes: %s", l.View())
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{59 * time.Second, "59s"},
		{61 * time.Second, "1m 1s"},
		{10*time.Minute + 5*time.Second, "10m 5s"},
	}
	for _, tc := range tests {
		if got := formatElapsed(tc.d); got != tc.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

// =============================================================================
// RAW VIEW
// =============================================================================

func TestHighlightJSON_AsciiPassthrough(t *testing.T) {
	src := "{\n  \"a\": 1\n}"
	if got := HighlightJSON(src, termenv.Ascii, true); got != src {
		t.Errorf("Ascii profile should not highlight, got %q", got)
	}
}

func TestHighlightJSON_Colors(t *testing.T) {
	src := "{\n  \"姓名\": \"张三\",\n  \"分数\": 0.75\n}"
	for _, profile := range []termenv.Profile{termenv.TrueColor, termenv.ANSI256, termenv.ANSI} {
		got := HighlightJSON(src, profile, true)
		if !strings.Contains(got, "\x1b[") {
			t.Errorf("profile %v: expected ANSI escapes", profile)
		}
		plain := ansi.ReplaceAllString(got, "")
		if !strings.Contains(plain, `"姓名": "张三"`) || !strings.Contains(plain, "0.75") {
			t.Errorf("profile %v: content lost: %q", profile, plain)
		}
	}
}

func TestRawView(t *testing.T) {
	rv := NewRawView(nil, payload.MustDecode(`{"a":1,"b":[1,2]}`))
	if rv.LineCount() != 7 {
		t.Fatalf("LineCount() = %d, want 7", rv.LineCount())
	}
	out := rv.Render(80)
	lines := strings.Split(out, "\n")
	if lines[0] != "1 {" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[6] != "7 }" {
		t.Errorf("last line = %q", lines[6])
	}
}

func TestRawView_MissingPayload(t *testing.T) {
	rv := NewRawView(nil, payload.Value{})
	if rv.LineCount() != 1 || !strings.Contains(rv.Render(80), "null") {
		t.Errorf("missing payload should render null, got %q", rv.Render(80))
	}
}

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManager_AddAndOrder(t *testing.T) {
	m := NewToastManager()

	if id := m.Info("   "); id != 0 {
		t.Errorf("blank message should be ignored, got id %d", id)
	}
	first := m.Info("一")
	second := m.Error("二")
	if first == 0 || second != first+1 {
		t.Errorf("ids = %d, %d", first, second)
	}

	toasts := m.Toasts()
	if len(toasts) != 2 || toasts[0].Message != "二" || toasts[0].Kind != ToastError {
		t.Errorf("Toasts() = %+v, want newest first", toasts)
	}
}

func TestToastManager_Bounded(t *testing.T) {
	m := NewToastManager()
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		m.Success(msg)
	}
	toasts := m.Toasts()
	if len(toasts) != maxToasts {
		t.Fatalf("len = %d, want %d", len(toasts), maxToasts)
	}
	if toasts[0].Message != "e" || toasts[maxToasts-1].Message != "c" {
		t.Errorf("kept %+v", toasts)
	}
}

func TestToastManager_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := NewToastManager()
	m.SetClock(clock.now)

	m.Info("旧")
	clock.advance(3 * time.Second)
	m.Info("新")

	if !m.Tick() || len(m.Toasts()) != 2 {
		t.Fatal("nothing should expire yet")
	}
	clock.advance(ToastDuration - 3*time.Second)
	if !m.Tick() {
		t.Fatal("newer toast should remain")
	}
	if toasts := m.Toasts(); len(toasts) != 1 || toasts[0].Message != "新" {
		t.Errorf("Toasts() = %+v", toasts)
	}
	clock.advance(3 * time.Second)
	if m.Tick() {
		t.Error("all toasts should have expired")
	}
}

func TestToastManager_DismissAndClear(t *testing.T) {
	m := NewToastManager()
	id := m.Info("a")
	m.Info("b")
	m.Dismiss(id)
	if toasts := m.Toasts(); len(toasts) != 1 || toasts[0].Message != "b" {
		t.Errorf("after Dismiss: %+v", toasts)
	}
	m.Dismiss(999)
	m.Clear()
	if len(m.Toasts()) != 0 {
		t.Error("Clear() should remove everything")
	}
}

func TestRenderToast(t *testing.T) {
	out := RenderToast(nil, Toast{Message: "PDF生成失败", Kind: ToastError}, 80)
	if !strings.Contains(out, "[X] PDF生成失败") {
		t.Errorf("RenderToast() = %q", out)
	}
	out = RenderToast(nil, Toast{Message: "已保存", Kind: ToastSuccess}, 80)
	if !strings.Contains(out, "[OK] 已保存") {
		t.Errorf("RenderToast() = %q", out)
	}

	stack := RenderToastStack(nil, []Toast{{Message: "新"}, {Message: "旧"}}, 80)
	if strings.Index(stack, "旧") > strings.Index(stack, "新") {
		t.Error("stack should render oldest first")
	}
	if RenderToastStack(nil, nil, 80) != "" {
		t.Error("empty stack should render nothing")
	}
}

// =============================================================================
// STATUS BAR AND HEADER
// =============================================================================

func TestStatusBar_Wide(t *testing.T) {
	s := NewStatusBar(nil)
	s.SetWidth(120)
	s.State = "输入"
	s.Backend = request.BackendRemoteAPI
	s.Variant = "enhanced"
	s.RemoteAI = "已配置"
	s.Hints = "enter 提交"

	view := s.View()
	for _, want := range []string{"输入", "通用分析", "远程AI分析", "enhanced", "AI: 已配置", "enter 提交"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q: %q", want, view)
		}
	}
	if w := lipgloss.Width(view); w != 118 {
		t.Errorf("width = %d, want 118", w)
	}
}

func TestStatusBar_NarrowDropsTrailingSegments(t *testing.T) {
	s := NewStatusBar(nil)
	s.SetWidth(20)
	s.State = "输入"
	s.Hints = "enter 提交 tab 下一项"

	if got := s.View(); got != "输入 │ 通用分析" {
		t.Errorf("View() = %q", got)
	}
}

func TestHeader(t *testing.T) {
	h := NewHeader(nil)
	if got := h.View(); got != DefaultTitle {
		t.Errorf("View() = %q", got)
	}
	h.Title = "张三 的八字分析报告"
	h.Service = "http://localhost:8000"
	if got := h.View(); got != "张三 的八字分析报告  http://localhost:8000" {
		t.Errorf("View() = %q", got)
	}
}
