// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Line-by-line birth data entry with history, then analyze.
//
// USABILITY: arrow keys recall earlier answers; tab completes enumerated
// fields such as gender and mode.

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/request"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
	"github.com/jeranaias/bazi-report-tui/internal/util"
)

// MsgPromptCancelled is printed when the user aborts with Ctrl+C or Ctrl+D.
const MsgPromptCancelled = "已取消"

// promptField is one question of the prompt session.
type promptField struct {
	key     string
	label   string
	choices []string
}

var promptFields = []promptField{
	{key: request.FieldName, label: "姓名"},
	{key: request.FieldGender, label: "性别 (男/女)", choices: []string{"男", "女", "male", "female"}},
	{key: request.FieldBirthYear, label: "出生年"},
	{key: request.FieldBirthMonth, label: "出生月"},
	{key: request.FieldBirthDay, label: "出生日"},
	{key: request.FieldTime, label: "出生时间 (HH:MM)"},
	{key: request.FieldLocation, label: "出生地点"},
	{key: request.FieldQuestion, label: "问题 (可选)"},
	{key: request.FieldMode, label: "分析模式", choices: []string{"general", "expert", "detailed"}},
}

// lineReader is the part of liner.State the session uses.
type lineReader interface {
	PromptWithSuggestion(prompt, text string, pos int) (string, error)
	SetCompleter(f liner.Completer)
	AppendHistory(item string)
}

// =============================================================================
// HISTORY
// =============================================================================

// promptLine wraps liner with a history file.
type promptLine struct {
	*liner.State
	historyFile string
	logger      *zap.Logger
}

func newPromptLine(logger *zap.Logger) *promptLine {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	p := &promptLine{State: line, logger: logger}
	if path, err := config.HistoryPath(); err == nil {
		p.historyFile = path
		if f, err := os.Open(path); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return p
}

// Close saves history with owner-only permissions and restores the terminal.
func (p *promptLine) Close() error {
	if p.historyFile != "" {
		var buf bytes.Buffer
		if _, err := p.WriteHistory(&buf); err == nil {
			if err := util.AtomicWriteFileWithDir(p.historyFile, buf.Bytes(), 0600, 0700); err != nil {
				p.logger.Debug("save prompt history", zap.Error(err))
			}
		}
	}
	return p.State.Close()
}

// =============================================================================
// COMMAND
// =============================================================================

func newPromptCmd(e *env) *cobra.Command {
	var format string
	var showRaw, save bool
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Enter birth data line by line, then analyze",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireTTY("prompt for birth data"); err != nil {
				return err
			}
			line := newPromptLine(e.logger)
			raw, err := e.collectFields(line)
			if cerr := line.Close(); cerr != nil {
				e.logger.Debug("close prompt", zap.Error(cerr))
			}
			if errors.Is(err, errPromptCancelled) {
				fmt.Fprintln(e.errOut, DimStyle.Render(MsgPromptCancelled))
				return nil
			}
			if err != nil {
				return err
			}
			return e.runAnalysis(cmd.Context(), raw, format, showRaw, save)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatTerminal, "output: "+strings.Join(outputFormats, ", "))
	cmd.Flags().BoolVar(&showRaw, "raw", false, "print the raw result JSON instead of the report")
	cmd.Flags().BoolVar(&save, "save", false, "also save the report under export.output_dir")
	return cmd
}

var errPromptCancelled = errors.New("prompt cancelled")

// collectFields asks every question once, then re-asks only the fields
// validation rejects until the input builds.
func (e *env) collectFields(r lineReader) (request.RawFields, error) {
	raw := request.RawFields{
		request.FieldLocation: e.cfg.Form.DefaultLocation,
		request.FieldMode:     e.cfg.Form.DefaultMode,
	}

	pending := promptFields
	for {
		for _, f := range pending {
			value, err := askField(r, f, raw[f.key])
			if err != nil {
				return nil, err
			}
			raw[f.key] = value
		}

		_, err := e.build(raw)
		var verr *request.ValidationError
		if !errors.As(err, &verr) {
			return raw, err
		}
		fmt.Fprintln(e.errOut, styles.RenderError(verr.UserMessage()))
		pending = fieldsToAsk(verr.Fields)
	}
}

func askField(r lineReader, f promptField, current string) (string, error) {
	choices := f.choices
	r.SetCompleter(func(line string) []string {
		var out []string
		for _, c := range choices {
			if strings.HasPrefix(c, strings.ToLower(line)) {
				out = append(out, c)
			}
		}
		return out
	})

	value, err := r.PromptWithSuggestion(PromptStyle.Render(f.label)+": ", current, -1)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", errPromptCancelled
	}
	if err != nil {
		return "", NewCommandError("prompt", "read", f.label, err)
	}
	value = strings.TrimSpace(value)
	if value != "" {
		r.AppendHistory(value)
	}
	return value, nil
}

// fieldsToAsk maps rejected request fields to prompt questions. Hour and
// minute are asked through the time question.
func fieldsToAsk(keys []string) []promptField {
	want := map[string]bool{}
	for _, k := range keys {
		switch k {
		case request.FieldBirthHour, request.FieldBirthMinute:
			want[request.FieldTime] = true
		default:
			want[k] = true
		}
	}
	var out []promptField
	for _, f := range promptFields {
		if want[f.key] {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return promptFields
	}
	return out
}
