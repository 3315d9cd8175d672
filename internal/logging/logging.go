// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by the client, pipeline,
// controller and TUI.
//
// The TUI owns the terminal, so interactive sessions log to a file. One-shot
// CLI commands log to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/bazi-report-tui/internal/config"
)

// Sink selects where log records go.
type Sink int

const (
	// SinkFile writes JSON records to the configured log file.
	SinkFile Sink = iota
	// SinkStderr writes console-encoded records to stderr.
	SinkStderr
)

// Options tunes logger construction beyond what the config file holds.
type Options struct {
	Sink Sink
	// Verbose forces debug level regardless of config.
	Verbose bool
}

// ParseLevel maps a config level name to a zap level. Unknown names map to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger from cfg.
func New(cfg *config.Config, opts Options) (*zap.Logger, error) {
	level := ParseLevel(cfg.Logging.Level)
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var zc zap.Config
	switch opts.Sink {
	case SinkStderr:
		zc = zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stderr"}
		zc.ErrorOutputPaths = []string{"stderr"}
		zc.DisableStacktrace = true
	default:
		path, err := cfg.LogPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zc = zap.NewProductionConfig()
		zc.OutputPaths = []string{path}
		// zap's own failures must not reach the alternate screen either.
		zc.ErrorOutputPaths = []string{path}
		zc.EncoderConfig.TimeKey = "ts"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("bazi"), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
