// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind selects the color and indicator of a toast.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastError
	ToastSuccess
)

// ToastDuration is how long a toast stays on screen.
const ToastDuration = 4 * time.Second

// maxToasts bounds the visible stack.
const maxToasts = 3

// Toast is a non-blocking notice that dismisses itself.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// ExpiredAt reports whether the toast should be gone at now.
func (t Toast) ExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the active toasts, newest first.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	now    func() time.Time
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, now: time.Now}
}

// SetClock replaces the time source.
func (m *ToastManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Add pushes a toast and returns its id. Empty messages are ignored and
// return 0.
func (m *ToastManager) Add(kind ToastKind, message string) int {
	message = strings.TrimSpace(message)
	if message == "" {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  ToastDuration,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	return t.ID
}

// Info adds an informational toast.
func (m *ToastManager) Info(message string) int { return m.Add(ToastInfo, message) }

// Error adds an error toast.
func (m *ToastManager) Error(message string) int { return m.Add(ToastError, message) }

// Success adds a success toast.
func (m *ToastManager) Success(message string) int { return m.Add(ToastSuccess, message) }

// Dismiss removes a toast by id.
func (m *ToastManager) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops expired toasts and reports whether any remain.
func (m *ToastManager) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.ExpiredAt(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return len(m.toasts) > 0
}

// Toasts returns a copy of the active toasts, newest first.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg drives expiry.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders one toast at most width columns wide.
func RenderToast(theme *styles.Theme, t Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	var style lipgloss.Style
	var icon string
	switch t.Kind {
	case ToastError:
		icon = styles.StatusIndicators.Error
		style = lipgloss.NewStyle().Foreground(styles.Rose)
		if theme != nil {
			style = theme.NoticeError
		}
	case ToastSuccess:
		icon = styles.StatusIndicators.Success
		style = lipgloss.NewStyle().Foreground(styles.Jade)
		if theme != nil {
			style = theme.NoticeSuccess
		}
	default:
		icon = styles.StatusIndicators.Info
		style = lipgloss.NewStyle().Foreground(styles.Indigo)
		if theme != nil {
			style = theme.NoticeInfo
		}
	}

	// lipgloss wraps by display width, so CJK text stays inside the box.
	return style.Width(maxWidth).Render(icon + " " + t.Message)
}

// RenderToastStack renders toasts oldest first so the newest is nearest the
// status bar.
func RenderToastStack(theme *styles.Theme, toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(theme, toasts[i], width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
