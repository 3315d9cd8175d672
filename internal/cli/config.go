// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration file management commands.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/bazi-report-tui/internal/config"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(e), newConfigPathCmd(e), newConfigInitCmd(e))
	return cmd
}

// resolveConfigPath resolves --config without loading the file.
func (e *env) resolveConfigPath() (string, error) {
	if e.opts.configPath != "" {
		return e.opts.configPath, nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", &ConfigError{Path: "~/.bazi/config.toml", Err: err}
	}
	return path, nil
}

func newConfigShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file, env and flags applied)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.opts.json {
				_, err := fmt.Fprintln(e.out, e.cfg.String())
				return err
			}
			text, err := e.cfg.TOML()
			if err != nil {
				return NewCommandError("config", "show", "could not encode config", err)
			}
			fmt.Fprintln(e.out, DimStyle.Render("# "+e.configPath))
			_, err = fmt.Fprint(e.out, text)
			return err
		},
	}
}

func newConfigPathCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := e.resolveConfigPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, path)
			return err
		},
	}
}

func newConfigInitCmd(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := e.resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return NewCommandError("config", "init", path+" already exists (use --force to overwrite)", nil)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return &ConfigError{Path: path, Err: err}
			}

			if err := config.SaveTOML(config.Default(), path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			fmt.Fprintln(e.out, styles.RenderSuccess("配置文件已创建: "+path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
