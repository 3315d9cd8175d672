// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
)

// =============================================================================
// DESCRIPTORS
// =============================================================================

// ExtractFunc selects a section's data from the whole result. ok=false
// means the section is absent and is skipped.
type ExtractFunc func(result payload.Value) (section payload.Value, ok bool)

// RenderFunc renders extracted section data.
type RenderFunc func(section payload.Value) Block

// Descriptor declares one report section.
type Descriptor struct {
	ID      string
	Title   string
	Extract ExtractFunc
	Render  RenderFunc
}

// Table is an ordered list of descriptors.
type Table struct {
	Name        string
	Descriptors []Descriptor
}

// IDs lists descriptor ids in order.
func (t Table) IDs() []string {
	ids := make([]string, len(t.Descriptors))
	for i, d := range t.Descriptors {
		ids[i] = d.ID
	}
	return ids
}

// At extracts the value at path when it is present and non-null.
func At(path ...string) ExtractFunc {
	return func(result payload.Value) (payload.Value, bool) {
		v := result.Path(path...)
		return v, v.Has()
	}
}

// section builds a descriptor whose renderer produces only a body.
func section(id, title string, extract ExtractFunc, body func(payload.Value) string) Descriptor {
	return Descriptor{
		ID:      id,
		Title:   title,
		Extract: extract,
		Render: func(v payload.Value) Block {
			return Block{ID: id, Title: title, Body: body(v)}
		},
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline renders results with a fixed table. It holds no per-result state
// and is safe for concurrent use.
type Pipeline struct {
	table  Table
	logger *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used to report degraded sections.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline returns a pipeline over table.
func NewPipeline(table Table, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{table: table, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Table returns the table the pipeline renders with.
func (p *Pipeline) Table() Table { return p.table }

// Render walks the table once in order. Absent sections are skipped; a
// section whose extractor or renderer panics becomes a degraded block and
// the walk continues.
func (p *Pipeline) Render(result payload.Value) []Block {
	blocks := make([]Block, 0, len(p.table.Descriptors))
	for _, d := range p.table.Descriptors {
		if b, ok := p.renderOne(d, result); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// renderOne isolates a single descriptor.
func (p *Pipeline) renderOne(d Descriptor, result payload.Value) (block Block, present bool) {
	// RELIABILITY: one malformed section never takes down the report.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("section render failed",
				zap.String("table", p.table.Name),
				zap.String("section", d.ID),
				zap.String("panic", fmt.Sprint(r)))
			block = Block{ID: d.ID, Title: d.Title, Body: Unavailable, Degraded: true}
			present = true
		}
	}()

	data, ok := d.Extract(result)
	if !ok {
		return Block{}, false
	}
	b := d.Render(data)
	if b.ID == "" {
		b.ID = d.ID
	}
	if b.Title == "" {
		b.Title = d.Title
	}
	return b, true
}
