// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/bazi-report-tui/internal/report"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports documents to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// frontMatter is the YAML header of an exported report.
type frontMatter struct {
	Title     string `yaml:"title"`
	Variant   string `yaml:"variant"`
	Date      string `yaml:"date"`
	Name      string `yaml:"name,omitempty"`
	Birth     string `yaml:"birth,omitempty"`
	Location  string `yaml:"location,omitempty"`
	Mode      string `yaml:"mode,omitempty"`
	Sections  int    `yaml:"sections"`
	Exported  string `yaml:"exported"`
	Generator string `yaml:"generator"`
}

// Export converts a document to Markdown.
func (e *MarkdownExporter) Export(doc report.Document) ([]byte, error) {
	if doc.GeneratedAt.IsZero() {
		return nil, ErrEmptyDocument
	}

	var buf bytes.Buffer

	// SECURITY: the YAML encoder quotes values, so a name containing a
	// newline cannot inject front matter keys.
	if e.options.IncludeMetadata {
		fm := frontMatter{
			Title:     doc.Title(),
			Variant:   doc.Variant,
			Date:      doc.GeneratedAt.Format(time.RFC3339),
			Sections:  len(doc.Blocks),
			Exported:  e.options.now().Format(time.RFC3339),
			Generator: "bazi",
		}
		if r := doc.Request; r != nil {
			fm.Name = r.Name
			fm.Birth = r.Birth.String()
			fm.Location = r.Location
			fm.Mode = r.Mode.Label()
		}
		data, err := yaml.Marshal(fm)
		if err != nil {
			return nil, fmt.Errorf("front matter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(data)
		buf.WriteString("---\n\n")
	}

	buf.WriteString(doc.Markdown())
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
