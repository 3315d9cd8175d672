// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// analyze.go - One-shot analysis: build, submit, render, print.

package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/export"
	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/report"
	"github.com/jeranaias/bazi-report-tui/internal/request"
	"github.com/jeranaias/bazi-report-tui/internal/ui/components"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// FormatTerminal prints the report for reading: glamour on a TTY, plain
// Markdown otherwise.
const FormatTerminal = "terminal"

// outputFormats lists every --format value.
var outputFormats = append([]string{FormatTerminal}, export.Formats...)

type analyzeOptions struct {
	fields fieldFlags
	format string
	raw    bool
	save   bool
}

func newAnalyzeCmd(e *env) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis and print the report",
		Example: `  bazi analyze --name 张三 --gender male --year 1990 --month 5 --day 12 --time 14:30
  bazi analyze --name 张三 --gender 女 --year 1988 --month 2 --day 29 --hour 8 --format html > report.html
  bazi analyze ... --raw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runAnalysis(cmd.Context(), opts.fields.raw(), opts.format, opts.raw, opts.save)
		},
	}
	opts.fields.bind(cmd.Flags())
	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatTerminal, "output: "+strings.Join(outputFormats, ", "))
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the raw result JSON instead of the report")
	cmd.Flags().BoolVar(&opts.save, "save", false, "also save the report under export.output_dir")
	return cmd
}

// runAnalysis is shared by analyze and prompt.
func (e *env) runAnalysis(ctx context.Context, raw request.RawFields, format string, showRaw, save bool) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if !slices.Contains(outputFormats, format) {
		return ErrUnsupportedFormat(format, outputFormats)
	}

	doc, result, err := e.analyze(ctx, raw)
	if err != nil {
		return err
	}

	if showRaw {
		if err := e.printRaw(result); err != nil {
			return err
		}
	} else if err := e.printDocument(doc, format); err != nil {
		return err
	}

	if save {
		path, err := e.saveDocument(doc, format)
		if err != nil {
			return NewCommandError("analyze", "save", "could not write report", err)
		}
		fmt.Fprintln(e.errOut, styles.RenderSuccess("报告已保存: "+path))
	}
	return nil
}

// analyze drives one Input → Loading → Result episode of the controller.
func (e *env) analyze(ctx context.Context, raw request.RawFields) (report.Document, payload.Value, error) {
	ctrl, err := controller.FromConfig(e.cfg, e.logger)
	if err != nil {
		return report.Document{}, payload.Missing, &ConfigError{Path: e.configPath, Err: err}
	}

	sub, err := ctrl.Submit(raw)
	if err != nil {
		return report.Document{}, payload.Missing, err
	}

	result, err := e.service().Submit(ctx, sub.Request)
	if err != nil {
		ctrl.Reject(sub.Seq, err)
		return report.Document{}, payload.Missing, err
	}
	ctrl.Resolve(sub.Seq, result)

	doc, _ := ctrl.Document()
	return doc, result, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (e *env) printDocument(doc report.Document, format string) error {
	if format == FormatTerminal {
		md := doc.Markdown()
		if e.stdoutTTY() {
			md = e.renderMarkdown(md)
		}
		_, err := fmt.Fprint(e.out, md)
		return err
	}

	opts, err := export.OptionsFromConfig(e.cfg.Export)
	if err != nil {
		return &ConfigError{Path: e.configPath, Err: err}
	}
	exporter, err := export.ExporterFor(format, opts)
	if err != nil {
		return ErrUnsupportedFormat(format, outputFormats)
	}
	content, err := exporter.Export(doc)
	if err != nil {
		return NewCommandError("analyze", "render", format, err)
	}
	_, err = e.out.Write(content)
	return err
}

// renderMarkdown styles md with glamour, falling back to the plain text.
func (e *env) renderMarkdown(md string) string {
	wrap := wrapWidth(e.cfg.Report.WordWrap, GetTerminalWidth())

	style := glamour.WithAutoStyle()
	if pref := strings.ToLower(e.cfg.UI.GlamourStyle); pref != "" && pref != "auto" {
		style = glamour.WithStandardStyle(pref)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		e.logger.Debug("glamour unavailable", zap.Error(err))
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		e.logger.Debug("markdown render failed", zap.Error(err))
		return md
	}
	return out
}

// minWrapWidth keeps glamour readable on very narrow terminals.
const minWrapWidth = 20

// wrapWidth is the configured wrap, narrowed to the terminal but never
// below minWrapWidth.
func wrapWidth(configured, termWidth int) int {
	return max(min(configured, termWidth-2), minWrapWidth)
}

func (e *env) printRaw(result payload.Value) error {
	data, err := result.JSON()
	if err != nil {
		return NewCommandError("analyze", "encode", "result is not valid JSON", err)
	}
	text := string(data)
	if e.stdoutTTY() {
		text = components.HighlightJSON(text, GetColorProfile(), lipgloss.HasDarkBackground())
	}
	_, err = fmt.Fprintln(e.out, text)
	return err
}

// saveDocument writes doc under export.output_dir. The terminal format
// saves in export.format.
func (e *env) saveDocument(doc report.Document, format string) (string, error) {
	if format == FormatTerminal {
		format = e.cfg.Export.Format
	}
	opts, err := export.OptionsFromConfig(e.cfg.Export)
	if err != nil {
		return "", err
	}
	exporter, err := export.ExporterFor(format, opts)
	if err != nil {
		return "", err
	}
	return export.ExportToFile(doc, exporter, opts)
}
