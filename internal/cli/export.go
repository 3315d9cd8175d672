// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export.go - Remote PDF export.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/bazi-report-tui/internal/export"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

func newExportCmd(e *env) *cobra.Command {
	var fields fieldFlags
	var outputDir string
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Download the service-rendered PDF report",
		Example: `  bazi export --name 张三 --gender male --year 1990 --month 5 --day 12 --time 14:30 --output ~/reports`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := e.build(fields.raw())
			if err != nil {
				return err
			}

			opts, err := export.OptionsFromConfig(e.cfg.Export)
			if err != nil {
				return &ConfigError{Path: e.configPath, Err: err}
			}
			if outputDir != "" {
				opts.OutputDir = outputDir
			}

			fmt.Fprintln(e.errOut, DimStyle.Render("正在生成PDF..."))
			art, err := e.service().Export(cmd.Context(), req)
			if err != nil {
				return err
			}

			// RELIABILITY: the artifact is written atomically and never
			// replaces an existing file.
			path, err := export.SaveArtifact(art.Filename, art.Data, opts)
			if err != nil {
				return NewCommandError("export", "save", "could not write PDF", err)
			}
			e.logger.Info("pdf exported", zap.String("path", path), zap.Int("bytes", len(art.Data)))

			if e.opts.json {
				return writeJSON(e.out, map[string]any{"path": path, "bytes": len(art.Data), "mime_type": art.MimeType})
			}
			fmt.Fprintln(e.out, styles.RenderSuccess("PDF已保存: "+path))
			return nil
		},
	}
	fields.bind(cmd.Flags())
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the PDF (default export.output_dir)")
	return cmd
}
