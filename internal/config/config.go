// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/bazi-report-tui/internal/util"
)

// Accepted values for enumerated settings.
var (
	Variants     = []string{"basic", "enhanced", "legacy"}
	Modes        = []string{"general", "expert", "detailed"}
	Backends     = []string{"local", "remote"}
	ExportFormat = []string{"markdown", "html", "json", "yaml"}
	Themes       = []string{"auto", "dark", "light"}
	LogLevels    = []string{"debug", "info", "warn", "error"}
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete bazi client configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Service is the remote analysis backend.
	Service ServiceConfig `toml:"service" json:"service"`

	// Report selects the section table and render geometry.
	Report ReportConfig `toml:"report" json:"report"`

	// Form holds defaults pre-filled into the input form.
	Form FormConfig `toml:"form" json:"form"`

	Export  ExportConfig  `toml:"export" json:"export"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// ServiceConfig describes the remote analysis service.
type ServiceConfig struct {
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs bounds a single analysis round-trip.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// ExportTimeoutSecs bounds PDF generation, which is slower than analysis.
	ExportTimeoutSecs int `toml:"export_timeout_secs" json:"export_timeout_secs"`

	// MaxRequestsPerMinute throttles outgoing calls. 0 disables throttling.
	MaxRequestsPerMinute int `toml:"max_requests_per_minute" json:"max_requests_per_minute"`
}

// Timeout returns TimeoutSecs as a duration.
func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// ExportTimeout returns ExportTimeoutSecs as a duration.
func (s ServiceConfig) ExportTimeout() time.Duration {
	return time.Duration(s.ExportTimeoutSecs) * time.Second
}

// ReportConfig controls which section table renders a result.
type ReportConfig struct {
	// Variant is one of basic, enhanced, legacy.
	Variant  string `toml:"variant" json:"variant"`
	BarWidth int    `toml:"bar_width" json:"bar_width"`
	WordWrap int    `toml:"word_wrap" json:"word_wrap"`
}

// FormConfig holds input form defaults.
type FormConfig struct {
	DefaultLocation string `toml:"default_location" json:"default_location"`
	DefaultMode     string `toml:"default_mode" json:"default_mode"`
	DefaultBackend  string `toml:"default_backend" json:"default_backend"`
}

// ExportConfig controls local document exports and remote PDF downloads.
type ExportConfig struct {
	OutputDir       string `toml:"output_dir" json:"output_dir"`
	Format          string `toml:"format" json:"format"`
	OpenAfterExport bool   `toml:"open_after_export" json:"open_after_export"`
	// Theme is the HTML exporter colour scheme (dark or light).
	Theme string `toml:"theme" json:"theme"`
}

// Dir returns OutputDir with a leading ~ expanded.
func (e ExportConfig) Dir() (string, error) {
	if e.OutputDir == "" {
		return ".", nil
	}
	return expandHome(e.OutputDir)
}

// UIConfig controls the terminal interface.
type UIConfig struct {
	Theme        string `toml:"theme" json:"theme"`
	GlamourStyle string `toml:"glamour_style" json:"glamour_style"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
	// File is the log destination for the TUI. Empty means ~/.bazi/bazi.log.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Service: ServiceConfig{
			BaseURL:              "http://localhost:8000",
			TimeoutSecs:          60,
			ExportTimeoutSecs:    120,
			MaxRequestsPerMinute: 30,
		},
		Report: ReportConfig{
			Variant:  "enhanced",
			BarWidth: 20,
			WordWrap: 80,
		},
		Form: FormConfig{
			DefaultLocation: "北京",
			DefaultMode:     "general",
			DefaultBackend:  "local",
		},
		Export: ExportConfig{
			OutputDir: ".",
			Format:    "markdown",
			Theme:     "dark",
		},
		UI: UIConfig{
			Theme:        "auto",
			GlamourStyle: "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns ~/.bazi.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".bazi"), nil
}

// DefaultPath returns ~/.bazi/config.toml.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath resolves the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bazi.log"), nil
}

// HistoryPath is where `bazi prompt` keeps its line history.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prompt_history"), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// ensureSecurePermissions tightens an existing config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("fix permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config at path (DefaultPath when empty), then applies
// defaults, BAZI_* environment overrides and validation. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg.SetDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg.
func LoadTOML(cfg *Config, path string) error {
	// Best effort; some filesystems do not support chmod.
	_ = ensureSecurePermissions(path)

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// SaveTOML writes cfg to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# bazi client configuration\n")
	buf.WriteString("# Environment variables BAZI_* override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	// SECURITY: owner-only file inside an owner-only directory.
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetDefaults fills zero values from Default.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = d.Service.BaseURL
	}
	if c.Service.TimeoutSecs == 0 {
		c.Service.TimeoutSecs = d.Service.TimeoutSecs
	}
	if c.Service.ExportTimeoutSecs == 0 {
		c.Service.ExportTimeoutSecs = d.Service.ExportTimeoutSecs
	}
	if c.Report.Variant == "" {
		c.Report.Variant = d.Report.Variant
	}
	if c.Report.BarWidth == 0 {
		c.Report.BarWidth = d.Report.BarWidth
	}
	if c.Report.WordWrap == 0 {
		c.Report.WordWrap = d.Report.WordWrap
	}
	if c.Form.DefaultLocation == "" {
		c.Form.DefaultLocation = d.Form.DefaultLocation
	}
	if c.Form.DefaultMode == "" {
		c.Form.DefaultMode = d.Form.DefaultMode
	}
	if c.Form.DefaultBackend == "" {
		c.Form.DefaultBackend = d.Form.DefaultBackend
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = d.Export.OutputDir
	}
	if c.Export.Format == "" {
		c.Export.Format = d.Export.Format
	}
	if c.Export.Theme == "" {
		c.Export.Theme = d.Export.Theme
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.GlamourStyle == "" {
		c.UI.GlamourStyle = d.UI.GlamourStyle
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting found in one pass.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs ValidateErrors

	oneOf := func(field, value string, allowed []string) {
		for _, a := range allowed {
			if strings.EqualFold(value, a) {
				return
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid value %q, must be one of: %s", value, strings.Join(allowed, ", ")),
		})
	}

	// SECURITY: only http(s) backends; anything else would hand birth data
	// to an arbitrary scheme handler.
	if u, err := url.Parse(c.Service.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "service.base_url",
			Message: fmt.Sprintf("invalid URL %q, must be http(s)://host[:port]", c.Service.BaseURL),
		})
	}
	if c.Service.TimeoutSecs < 1 || c.Service.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "service.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Service.TimeoutSecs),
		})
	}
	if c.Service.ExportTimeoutSecs < 1 || c.Service.ExportTimeoutSecs > 1800 {
		errs = append(errs, ValidationError{
			Field:   "service.export_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 1800, got %d", c.Service.ExportTimeoutSecs),
		})
	}
	if c.Service.MaxRequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "service.max_requests_per_minute",
			Message: "must not be negative",
		})
	}

	oneOf("report.variant", c.Report.Variant, Variants)
	if c.Report.BarWidth < 5 || c.Report.BarWidth > 60 {
		errs = append(errs, ValidationError{
			Field:   "report.bar_width",
			Message: fmt.Sprintf("must be between 5 and 60, got %d", c.Report.BarWidth),
		})
	}
	if c.Report.WordWrap < 40 || c.Report.WordWrap > 240 {
		errs = append(errs, ValidationError{
			Field:   "report.word_wrap",
			Message: fmt.Sprintf("must be between 40 and 240, got %d", c.Report.WordWrap),
		})
	}

	oneOf("form.default_mode", c.Form.DefaultMode, Modes)
	oneOf("form.default_backend", c.Form.DefaultBackend, Backends)
	oneOf("export.format", c.Export.Format, ExportFormat)
	oneOf("export.theme", c.Export.Theme, []string{"dark", "light"})
	oneOf("ui.theme", c.UI.Theme, Themes)
	oneOf("logging.level", c.Logging.Level, LogLevels)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies BAZI_* environment variables.
//
// Supported variables:
//   - BAZI_BASE_URL: service.base_url
//   - BAZI_VARIANT: report.variant
//   - BAZI_TIMEOUT: service.timeout_secs (integer seconds)
//   - BAZI_LOG_LEVEL: logging.level
//   - BAZI_EXPORT_DIR: export.output_dir
//   - BAZI_THEME: ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BAZI_BASE_URL"); v != "" {
		c.Service.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("BAZI_VARIANT"); v != "" {
		c.Report.Variant = strings.ToLower(v)
	}
	if v := os.Getenv("BAZI_TIMEOUT"); v != "" {
		// Unparsable values are ignored rather than zeroing the timeout.
		if secs, err := strconv.Atoi(v); err == nil {
			c.Service.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("BAZI_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("BAZI_EXPORT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("BAZI_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns an independent copy. Config holds only value fields.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as indented JSON for `bazi config show`.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// TOML renders the config in file form.
func (c *Config) TOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", err
	}
	return buf.String(), nil
}
