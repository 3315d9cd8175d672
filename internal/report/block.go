// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"strings"
	"time"

	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// Placeholder text used by renderers.
const (
	Placeholder      = "暂无"
	EmptyList        = "（无）"
	Unavailable      = "本节暂不可用"
	NoResultsMessage = "暂无结果数据"
)

// Block is one rendered report section.
type Block struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	// Body is Markdown.
	Body string `json:"body" yaml:"body"`
	// Degraded marks a section whose renderer failed.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// Markdown renders the block with its heading.
func (b Block) Markdown() string {
	var sb strings.Builder
	sb.WriteString("## ")
	sb.WriteString(b.Title)
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimRight(b.Body, "\n"))
	sb.WriteString("\n")
	return sb.String()
}

// Document is a rendered report with the context it was produced in.
type Document struct {
	Variant     string                   `json:"variant" yaml:"variant"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Request     *request.AnalysisRequest `json:"-" yaml:"-"`
	Blocks      []Block                  `json:"blocks" yaml:"blocks"`
}

// Title is the document heading.
func (d Document) Title() string {
	if d.Request != nil && d.Request.Name != "" {
		return d.Request.Name + " 的八字分析报告"
	}
	return "八字分析报告"
}

// Markdown renders every block in order. An empty document renders the
// no-results message.
func (d Document) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(d.Title())
	sb.WriteString("\n\n")
	if len(d.Blocks) == 0 {
		sb.WriteString(NoResultsMessage)
		sb.WriteString("\n")
		return sb.String()
	}
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Markdown())
	}
	return sb.String()
}
