// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/jeranaias/bazi-report-tui/internal/report"
)

// requestRecord is the exported summary of the analysis request.
type requestRecord struct {
	Name       string `json:"name" yaml:"name"`
	Gender     string `json:"gender" yaml:"gender"`
	Birth      string `json:"birth" yaml:"birth"`
	Location   string `json:"location" yaml:"location"`
	Question   string `json:"question,omitempty" yaml:"question,omitempty"`
	Mode       string `json:"mode" yaml:"mode"`
	Backend    string `json:"backend" yaml:"backend"`
	CurrentAge int    `json:"current_age" yaml:"current_age"`
}

// documentRecord is the structured form shared by the JSON and YAML
// exporters. Field order is the output order.
type documentRecord struct {
	Title       string         `json:"title" yaml:"title"`
	Variant     string         `json:"variant" yaml:"variant"`
	GeneratedAt string         `json:"generated_at" yaml:"generated_at"`
	Request     *requestRecord `json:"request,omitempty" yaml:"request,omitempty"`
	Blocks      []report.Block `json:"blocks" yaml:"blocks"`
}

func newDocumentRecord(doc report.Document, withRequest bool) documentRecord {
	rec := documentRecord{
		Title:       doc.Title(),
		Variant:     doc.Variant,
		GeneratedAt: doc.GeneratedAt.Format(time.RFC3339),
		Blocks:      doc.Blocks,
	}
	if rec.Blocks == nil {
		rec.Blocks = []report.Block{}
	}
	if withRequest && doc.Request != nil {
		r := doc.Request
		rec.Request = &requestRecord{
			Name:       r.Name,
			Gender:     r.Gender.Label(),
			Birth:      r.Birth.String(),
			Location:   r.Location,
			Question:   r.Question,
			Mode:       r.Mode.Label(),
			Backend:    r.Backend.Label(),
			CurrentAge: r.CurrentAge,
		}
	}
	return rec
}
