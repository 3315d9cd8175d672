// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Root command, shared command environment and Execute.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/logging"
	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/report"
	"github.com/jeranaias/bazi-report-tui/internal/request"
	"github.com/jeranaias/bazi-report-tui/internal/ui/app"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// skipConfig marks commands that must work without a loadable config.
const skipConfig = "skip-config"

// =============================================================================
// COMMAND ENVIRONMENT
// =============================================================================

// service is every client call the commands make. It is a superset of
// app.Service, so the same value starts the TUI.
type service interface {
	Submit(ctx context.Context, req request.AnalysisRequest) (payload.Value, error)
	Export(ctx context.Context, req request.AnalysisRequest) (client.Artifact, error)
	RemoteAIStatus(ctx context.Context) (client.RemoteAIStatus, error)
	ConfigureRemoteAI(ctx context.Context, rc client.RemoteAIConfig) (client.RemoteAIResult, error)
	Health(ctx context.Context) (client.Health, error)
}

// globalOptions are the root persistent flags.
type globalOptions struct {
	configPath string
	variant    string
	baseURL    string
	verbose    bool
	json       bool
}

// env is shared by all commands of one invocation.
type env struct {
	opts globalOptions

	cfg        *config.Config
	configPath string
	logger     *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// Overridable for tests.
	newService func(cfg *config.Config, logger *zap.Logger) service
	newLogger  func(cfg *config.Config, opts logging.Options) (*zap.Logger, error)
	stdinTTY   func() bool
	stdoutTTY  func() bool
	runTUI     func(opts app.RunOptions) error
}

func newEnv() *env {
	return &env{
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		logger:     zap.NewNop(),
		newService: defaultService,
		newLogger:  logging.New,
		stdinTTY:   IsTTY,
		stdoutTTY:  IsStdoutTTY,
		runTUI:     app.Run,
	}
}

func defaultService(cfg *config.Config, logger *zap.Logger) service {
	cc := client.ConfigFromService(cfg.Service, client.APIForVariant(cfg.Report.Variant))
	cc.Logger = logger
	cc.UserAgent = "bazi/" + Version
	return client.NewClientWithConfig(cc)
}

// load resolves the config path, loads the file and applies flag
// overrides, then builds the logger. The TUI logs to the file sink so that
// nothing reaches the alternate screen.
func (e *env) load(sink logging.Sink) error {
	path, err := e.resolveConfigPath()
	if err != nil {
		return err
	}
	e.configPath = path

	cfg, err := config.Load(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	if e.opts.variant != "" {
		if !slices.Contains(report.Variants, e.opts.variant) {
			return &UsageError{Field: "variant", Value: e.opts.variant, Reason: "unknown report variant", Example: "--variant enhanced"}
		}
		cfg.Report.Variant = e.opts.variant
	}
	if e.opts.baseURL != "" {
		cfg.Service.BaseURL = e.opts.baseURL
		if err := cfg.Validate(); err != nil {
			return &UsageError{Field: "base-url", Value: e.opts.baseURL, Reason: err.Error(), Example: "--base-url http://localhost:8000"}
		}
	}
	e.cfg = cfg

	logger, err := e.newLogger(cfg, logging.Options{Sink: sink, Verbose: e.opts.verbose})
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	e.logger = logger
	return nil
}

func (e *env) service() service {
	return e.newService(e.cfg, e.logger)
}

// requireTTY fails unless stdin is a terminal.
func (e *env) requireTTY(operation string) error {
	if !e.stdinTTY() {
		return &TTYRequiredError{Operation: operation}
	}
	return nil
}

func (e *env) close() {
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "bazi",
		Short: "八字能量解读 - bazi report client",
		Long: `bazi is a terminal client for the bazi analysis service.

Run without arguments to start the interactive form. The subcommands run
one analysis or service call and print the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			sink := logging.SinkStderr
			if cmd == cmd.Root() {
				sink = logging.SinkFile
			}
			return e.load(sink)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireTTY("start the TUI"); err != nil {
				return err
			}
			return e.runTUI(app.RunOptions{
				Config:     e.cfg,
				ConfigPath: e.configPath,
				Logger:     e.logger,
				Service:    e.service(),
			})
		},
	}

	root.SetIn(e.in)
	root.SetOut(e.out)
	root.SetErr(e.errOut)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Field: "flag", Reason: err.Error(), Example: cmd.UseLine()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&e.opts.configPath, "config", "", "config file (default ~/.bazi/config.toml)")
	pf.StringVar(&e.opts.variant, "variant", "", "report variant: basic, enhanced or legacy")
	pf.StringVar(&e.opts.baseURL, "base-url", "", "analysis service URL")
	pf.BoolVarP(&e.opts.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&e.opts.json, "json", false, "machine-readable output where supported")

	root.AddCommand(
		newAnalyzeCmd(e),
		newPromptCmd(e),
		newExportCmd(e),
		newRemoteAICmd(e),
		newStatusCmd(e),
		newConfigCmd(e),
		newVersionCmd(e),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := newEnv()
	err := newRootCmd(e).ExecuteContext(ctx)
	e.close()
	if err != nil {
		DisplayError(e.errOut, err, e.opts.json, e.opts.verbose)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// VERSION
// =============================================================================

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if e.opts.json {
				return writeJSON(e.out, info)
			}
			fmt.Fprintf(e.out, "bazi %s (%s, built %s)\n", info.Version, info.GitCommit, info.BuildDate)
			fmt.Fprintf(e.out, "%s %s\n", info.GoVersion, info.Platform)
			return nil
		},
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// build validates raw with the configured form defaults.
func (e *env) build(raw request.RawFields) (request.AnalysisRequest, error) {
	return controller.BuilderFromConfig(e.cfg.Form).Build(raw)
}
