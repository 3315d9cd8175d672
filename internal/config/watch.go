// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a config file when it changes and publishes the result.
// Invalid files are reported on Errors and the previous config stays in use.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger

	updates chan *Config
	errs    chan error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Watch starts watching path. The parent directory is watched so that
// atomic-rename saves (vim, our own SaveTOML) are seen.
func Watch(path string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
		updates:  make(chan *Config, 1),
		errs:     make(chan error, 1),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.processEvents()
	return w, nil
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Updates delivers each successfully reloaded config. Only the newest
// pending config is kept if the reader falls behind.
func (w *Watcher) Updates() <-chan *Config { return w.updates }

// Errors delivers reload failures.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.updates)
		close(w.errs)
	})
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("config watcher panic", zap.Any("panic", r))
		}
	}()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected", zap.String("path", w.path), zap.Error(err))
		publish(w.errs, err)
		return
	}
	w.logger.Info("config reloaded", zap.String("path", w.path))
	publish(w.updates, cfg)
}

// publish replaces any unread value so the reader always sees the latest.
func publish[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
