// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/report"
	"github.com/jeranaias/bazi-report-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a rendered report into a file format.
type Exporter interface {
	// Export converts a document to the target format and returns the content.
	Export(doc report.Document) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md", ".html").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Format names accepted by ExporterFor.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Formats lists the local export formats.
var Formats = []string{FormatMarkdown, FormatHTML, FormatJSON, FormatYAML}

// ErrEmptyDocument is returned for a document without a generation time.
var ErrEmptyDocument = errors.New("document has not been rendered")

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata includes front matter and the request summary.
	IncludeMetadata bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string

	// Now stamps file names and footers. Default: time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
		Theme:           "dark",
		Now:             time.Now,
	}
}

// OptionsFromConfig builds options from the [export] config section.
func OptionsFromConfig(c config.ExportConfig) (*Options, error) {
	dir, err := c.Dir()
	if err != nil {
		return nil, fmt.Errorf("export directory: %w", err)
	}
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.OpenAfterExport = c.OpenAfterExport
	if c.Theme != "" {
		opts.Theme = c.Theme
	}
	return opts, nil
}

func (o *Options) now() time.Time {
	if o == nil || o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *Options) theme() string {
	if o == nil || o.Theme != "light" {
		return "dark"
	}
	return "light"
}

// ExporterFor returns the exporter for a format name.
func ExporterFor(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown, "md":
		return NewMarkdownExporter(opts), nil
	case FormatHTML, "htm":
		return NewHTMLExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatYAML, "yml":
		return NewYAMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a document using exporter and returns the output path.
func ExportToFile(doc report.Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	name := "report"
	if doc.Request != nil {
		name = doc.Request.Name
	}
	filename := fmt.Sprintf("bazi_%s_%s%s",
		sanitizeFilename(name),
		opts.now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	return writeOutput(filename, content, opts)
}

// SaveArtifact writes a file received from the service under OutputDir.
// An existing file of the same name is never overwritten.
func SaveArtifact(filename string, data []byte, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(data) == 0 {
		return "", errors.New("artifact is empty")
	}
	ext := filepath.Ext(filename)
	name := sanitizeFilename(strings.TrimSuffix(filename, ext))
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + sanitizeFilename(ext)
	}
	return writeOutput(name, data, opts)
}

// writeOutput places content in OutputDir under filename, adding a short
// random suffix when the name is taken.
func writeOutput(filename string, content []byte, opts *Options) (string, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, filename)
	if _, err := os.Stat(outputPath); err == nil {
		ext := filepath.Ext(filename)
		suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
		outputPath = filepath.Join(dir, strings.TrimSuffix(filename, ext)+"_"+suffix+ext)
	}

	// RELIABILITY: a crash mid-write never leaves a truncated report behind.
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// Non-fatal - the file was still created.
		_ = openFile(outputPath)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	// Replace problematic characters (Windows and Unix)
	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	out := strings.Trim(string(result), ".")
	if out == "" {
		return "report"
	}
	return out
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		// Empty quoted title so the path is taken as the target.
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
