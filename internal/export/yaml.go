// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/bazi-report-tui/internal/report"
)

// =============================================================================
// YAML EXPORTER
// =============================================================================

// YAMLExporter exports documents to YAML with the JSON exporter's layout.
type YAMLExporter struct {
	options *Options
}

// NewYAMLExporter creates a new YAML exporter.
func NewYAMLExporter(opts *Options) *YAMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &YAMLExporter{options: opts}
}

// Export converts a document to YAML. Multi-line bodies become literal
// blocks, so the Markdown stays readable.
func (e *YAMLExporter) Export(doc report.Document) ([]byte, error) {
	if doc.GeneratedAt.IsZero() {
		return nil, ErrEmptyDocument
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newDocumentRecord(doc, e.options.IncludeMetadata)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for YAML.
func (e *YAMLExporter) FileExtension() string {
	return ".yaml"
}

// MimeType returns the MIME type for YAML.
func (e *YAMLExporter) MimeType() string {
	return "application/yaml"
}
