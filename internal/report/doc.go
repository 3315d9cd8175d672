// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report turns an analysis result into an ordered list of rendered
// sections.
//
// # Key Types
//
//   - Descriptor: one section (id, title, extractor, renderer)
//   - Table: the ordered descriptors of a report variant
//   - Pipeline: walks a Table over a result, isolating renderer faults
//   - Block: one rendered section with a Markdown body
//   - Document: blocks plus request metadata, consumed by exporters
//
// # Variants
//
// Basic, Enhanced and Legacy are three tables over the same pipeline. A
// section appears only when its data is present in the result; keys no table
// knows about are ignored.
//
// # Usage
//
//	table, err := report.TableByName("enhanced", report.Geometry{BarWidth: 20})
//	if err != nil {
//	    return err
//	}
//	blocks := report.NewPipeline(table).Render(result)
package report
