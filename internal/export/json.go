// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/bazi-report-tui/internal/report"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports documents to JSON. Block bodies stay Markdown.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a document to indented JSON.
func (e *JSONExporter) Export(doc report.Document) ([]byte, error) {
	if doc.GeneratedAt.IsZero() {
		return nil, ErrEmptyDocument
	}
	data, err := json.MarshalIndent(newDocumentRecord(doc, e.options.IncludeMetadata), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
