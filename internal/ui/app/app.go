// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// RunOptions configures Run.
type RunOptions struct {
	Config *config.Config
	// ConfigPath is watched for changes when set.
	ConfigPath string
	Logger     *zap.Logger
	// Service overrides the HTTP client built from Config.Service.
	Service Service
}

// Run starts the interactive TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctrl, err := controller.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	svc := opts.Service
	if svc == nil {
		cc := client.ConfigFromService(cfg.Service, client.APIForVariant(cfg.Report.Variant))
		cc.Logger = logger
		svc = client.NewClientWithConfig(cc)
	}


	var watcher *config.Watcher
	if opts.ConfigPath != "" {
		watcher, err = config.Watch(opts.ConfigPath, config.DefaultDebounce, logger)
		if err != nil {
			logger.Warn("config watch unavailable", zap.String("path", opts.ConfigPath), zap.Error(err))
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	m := New(Options{
		Config:     cfg,
		Service:    svc,
		Controller: ctrl,
		Theme:      styles.NewTheme(cfg.UI.Theme),
		Logger:     logger,
		Watcher:    watcher,
	})
	defer m.Shutdown()

	logger.Info("tui started",
		zap.String("service", cfg.Service.BaseURL),
		zap.String("variant", cfg.Report.Variant))

	p := tea.NewProgram(m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse wheel scrolling
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	logger.Info("tui stopped")
	return nil
}
