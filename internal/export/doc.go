// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes rendered reports to disk.
//
// Local exporters turn a report.Document into a file in one of four
// formats. The remote PDF produced by the service is written with
// SaveArtifact. All writes are atomic.
//
// # Supported Formats
//
//   - Markdown: front matter plus the document as rendered
//   - HTML: standalone page with embedded CSS and a theme toggle
//   - JSON: the blocks with their request summary
//   - YAML: the same structure as JSON
//
// # Usage
//
//	exporter, err := export.ExporterFor("html", opts)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(doc, exporter, opts)
package export
