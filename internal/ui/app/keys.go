// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/bazi-report-tui/internal/controller"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings. Which ones are live depends on the
// controller state; see ShortHelpFor.
type KeyMap struct {
	// Form
	Submit       key.Binding
	NextField    key.Binding
	PrevField    key.Binding
	CycleMode    key.Binding
	CycleBackend key.Binding
	RefreshAI    key.Binding

	// Result
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	ToggleRaw   key.Binding
	ExportPDF   key.Binding
	SaveLocal   key.Binding
	NewAnalysis key.Binding

	// Global
	Dismiss key.Binding
	Quit    key.Binding
	QuitAlt key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "提交"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "下一项"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "上一项"),
		),
		CycleMode: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "分析模式"),
		),
		CycleBackend: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "分析引擎"),
		),
		RefreshAI: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "远程AI状态"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "上滚"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "下滚"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("PgUp", "上一页"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("PgDn", "下一页"),
		),
		ToggleRaw: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "原始数据"),
		),
		ExportPDF: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "导出PDF"),
		),
		SaveLocal: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "保存报告"),
		),
		NewAnalysis: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "重新分析"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "关闭提示"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "退出"),
		),
		QuitAlt: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "退出"),
		),
	}
}

// ShortHelpFor returns the bindings worth showing in state s.
func (k KeyMap) ShortHelpFor(s controller.State) []key.Binding {
	switch s {
	case controller.StateLoading:
		return []key.Binding{k.Dismiss, k.Quit}
	case controller.StateResult:
		return []key.Binding{k.Up, k.Down, k.ToggleRaw, k.ExportPDF, k.SaveLocal, k.NewAnalysis, k.QuitAlt}
	default:
		return []key.Binding{k.Submit, k.NextField, k.CycleMode, k.CycleBackend, k.RefreshAI, k.Quit}
	}
}
