// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Service health and remote AI status, probed concurrently.

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

// statusReport is the `bazi status` result.
type statusReport struct {
	ServiceURL string                 `json:"service_url"`
	Variant    string                 `json:"variant"`
	Health     *client.Health         `json:"health,omitempty"`
	HealthErr  string                 `json:"health_error,omitempty"`
	RemoteAI   *client.RemoteAIStatus `json:"remote_ai,omitempty"`
	RemoteErr  string                 `json:"remote_ai_error,omitempty"`
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check service health and remote AI status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := e.service()
			rep := statusReport{ServiceURL: e.cfg.Service.BaseURL, Variant: e.cfg.Report.Variant}

			// Both probes always run to completion; one failing does not
			// cancel the other.
			var healthErr, remoteErr error
			var g errgroup.Group
			g.Go(func() error {
				h, err := svc.Health(cmd.Context())
				if err != nil {
					healthErr = err
					return nil
				}
				rep.Health = &h
				return nil
			})
			g.Go(func() error {
				st, err := svc.RemoteAIStatus(cmd.Context())
				if err != nil {
					remoteErr = err
					return nil
				}
				rep.RemoteAI = &st
				return nil
			})
			_ = g.Wait()

			if healthErr != nil {
				rep.HealthErr = controller.UserMessage(healthErr)
			}
			if remoteErr != nil {
				rep.RemoteErr = controller.UserMessage(remoteErr)
			}

			if e.opts.json {
				if err := writeJSON(e.out, rep); err != nil {
					return err
				}
			} else {
				printStatus(e, rep)
			}

			// The exit code follows the service, not the optional backend.
			if healthErr != nil {
				return healthErr
			}
			if !rep.Health.Healthy() {
				return NewCommandError("status", "health", "service reports "+rep.Health.Status, nil)
			}
			return nil
		},
	}
}

func printStatus(e *env, rep statusReport) {
	fmt.Fprintln(e.out, TitleStyle.Render("八字能量解读 服务状态"))
	fmt.Fprintln(e.out, RenderKeyValue("服务地址", rep.ServiceURL))
	fmt.Fprintln(e.out, RenderKeyValue("报告类型", rep.Variant))
	fmt.Fprintln(e.out, RenderSeparator(40))

	switch {
	case rep.Health != nil:
		line := rep.Health.Status
		if rep.Health.Version != "" {
			line += " (v" + rep.Health.Version + ")"
		}
		fmt.Fprintln(e.out, RenderKeyValue("服务", styles.RenderStatus(rep.Health.Healthy(), line)))
		if len(rep.Health.Features) > 0 {
			fmt.Fprintln(e.out, RenderKeyValue("功能", strings.Join(rep.Health.Features, ", ")))
		}
	default:
		fmt.Fprintln(e.out, RenderKeyValue("服务", styles.RenderError(rep.HealthErr)))
	}

	switch {
	case rep.RemoteAI != nil:
		fmt.Fprintln(e.out, RenderKeyValue("远程AI", styles.RenderStatus(rep.RemoteAI.Configured(), rep.RemoteAI.Label())))
	default:
		fmt.Fprintln(e.out, RenderKeyValue("远程AI", styles.RenderWarning(rep.RemoteErr)))
	}
}
