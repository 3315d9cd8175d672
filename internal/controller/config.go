// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/report"
	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// =============================================================================
// CONFIG WIRING
// =============================================================================

// FromConfig builds a controller for cfg: the report variant's pipeline,
// a builder and reset form seeded with the form defaults.
func FromConfig(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Controller, error) {
	pipeline, err := PipelineFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	base := []Option{WithFormDefaults(FormDefaults(cfg.Form)), WithLogger(logger)}
	return New(pipeline, BuilderFromConfig(cfg.Form), append(base, opts...)...), nil
}

// BuilderFromConfig returns a request builder seeded with the form defaults.
func BuilderFromConfig(f config.FormConfig) *request.Builder {
	var opts []request.BuilderOption
	if f.DefaultLocation != "" {
		opts = append(opts, request.WithDefaultLocation(f.DefaultLocation))
	}
	if mode, ok := request.ParseMode(f.DefaultMode); ok {
		opts = append(opts, request.WithDefaultMode(mode))
	}
	if backend, ok := request.ParseBackend(f.DefaultBackend); ok {
		opts = append(opts, request.WithDefaultBackend(backend))
	}
	return request.NewBuilder(opts...)
}

// FormDefaults returns the raw fields a reset form starts from.
func FormDefaults(f config.FormConfig) request.RawFields {
	raw := request.RawFields{
		request.FieldLocation: f.DefaultLocation,
	}
	if mode, ok := request.ParseMode(f.DefaultMode); ok {
		raw[request.FieldMode] = string(mode)
	}
	if backend, ok := request.ParseBackend(f.DefaultBackend); ok {
		raw[request.FieldBackend] = string(backend)
	}
	return raw
}

// PipelineFromConfig builds the section pipeline for cfg.Report.
func PipelineFromConfig(cfg *config.Config, logger *zap.Logger) (*report.Pipeline, error) {
	table, err := report.TableByName(cfg.Report.Variant, report.Geometry{BarWidth: cfg.Report.BarWidth})
	if err != nil {
		return nil, err
	}
	return report.NewPipeline(table, report.WithLogger(logger)), nil
}
