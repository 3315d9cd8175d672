// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/bazi-report-tui/internal/request"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// =============================================================================
// BIRTH FORM
// =============================================================================

// formField is one labelled text input bound to a request field key.
type formField struct {
	key   string
	label string
	input textinput.Model
}

// formSpec lists the inputs in tab order.
var formSpec = []struct {
	key         string
	label       string
	placeholder string
	limit       int
}{
	{request.FieldName, "姓名", "请输入姓名", request.MaxNameLength},
	{request.FieldGender, "性别", "男 / 女", 6},
	{request.FieldBirthYear, "出生年", "1990", 4},
	{request.FieldBirthMonth, "月", "1-12", 2},
	{request.FieldBirthDay, "日", "1-31", 2},
	{request.FieldTime, "时间", "HH:MM", 5},
	{request.FieldLocation, "出生地点", request.DefaultLocation, request.MaxLocationLength},
	{request.FieldQuestion, "问题", "想了解的问题（可选）", request.MaxQuestionLength},
}

// form is the Input-state editor. Mode and backend are toggles held
// alongside the text inputs.
type form struct {
	fields  []formField
	focus   int
	mode    request.Mode
	backend request.Backend
}

func newForm() *form {
	f := &form{
		mode:    request.ModeGeneral,
		backend: request.BackendLocal,
	}
	for _, spec := range formSpec {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = spec.placeholder
		ti.CharLimit = spec.limit
		f.fields = append(f.fields, formField{key: spec.key, label: spec.label, input: ti})
	}
	f.fields[0].input.Focus()
	return f
}

// load replaces the form contents with raw. Missing keys clear their input.
func (f *form) load(raw request.RawFields) {
	for i := range f.fields {
		f.fields[i].input.SetValue(raw[f.fields[i].key])
	}
	if m, ok := request.ParseMode(raw[request.FieldMode]); ok {
		f.mode = m
	}
	if b, ok := request.ParseBackend(raw[request.FieldBackend]); ok {
		f.backend = b
	}
	f.focusOn(0)
}

// values collects the form as raw fields for the builder.
func (f *form) values() request.RawFields {
	raw := request.RawFields{
		request.FieldMode:    string(f.mode),
		request.FieldBackend: string(f.backend),
	}
	for _, field := range f.fields {
		raw[field.key] = field.input.Value()
	}
	return raw
}

func (f *form) focusOn(i int) tea.Cmd {
	n := len(f.fields)
	i = ((i % n) + n) % n
	f.fields[f.focus].input.Blur()
	f.focus = i
	return f.fields[i].input.Focus()
}

func (f *form) next() tea.Cmd { return f.focusOn(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.focusOn(f.focus - 1) }

// focusedKey returns the field key that has focus.
func (f *form) focusedKey() string {
	return f.fields[f.focus].key
}

// update forwards msg to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// view renders the form. invalid marks fields the last validation rejected.
func (f *form) view(theme *styles.Theme, invalid map[string]bool, width int) string {
	var sb strings.Builder
	for i, field := range f.fields {
		label := field.label
		marker := "  "
		if invalid[field.key] || (field.key == request.FieldTime && (invalid[request.FieldBirthHour] || invalid[request.FieldBirthMinute])) {
			marker = "! "
		}
		field.input.Width = max(width-20, 10)
		if theme != nil {
			if i == f.focus {
				label = theme.FormLabelFocused.Render(label)
			} else {
				label = theme.FormLabel.Render(label)
			}
		}
		sb.WriteString(marker)
		sb.WriteString(label)
		sb.WriteString(" ")
		sb.WriteString(field.input.View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(f.toggleLine(theme))

	if theme == nil {
		return sb.String()
	}
	return theme.FormBox.Render(sb.String())
}

// toggleLine shows the mode choices with the selected one highlighted and
// the backend label.
func (f *form) toggleLine(theme *styles.Theme) string {
	var parts []string
	for _, m := range request.Modes {
		label := m.Label()
		switch {
		case theme == nil && m == f.mode:
			label = "[" + label + "]"
		case theme != nil && m == f.mode:
			label = theme.ToggleActive.Render(label)
		case theme != nil:
			label = theme.Toggle.Render(label)
		}
		parts = append(parts, label)
	}

	backend := f.backend.Label()
	if theme != nil {
		if f.backend == request.BackendRemoteAPI {
			backend = theme.BackendRemote.Render(backend)
		} else {
			backend = theme.BackendLocal.Render(backend)
		}
	}
	return "模式 " + strings.Join(parts, " ") + "   引擎 " + backend
}
