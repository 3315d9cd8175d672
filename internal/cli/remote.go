// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// remote.go - Remote AI backend status and configuration.

package cli

import (
	"fmt"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/ui/styles"
)

func newRemoteAICmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote-ai",
		Short: "Inspect or configure the remote AI interpretation backend",
	}
	cmd.AddCommand(newRemoteStatusCmd(e), newRemoteConfigureCmd(e))
	return cmd
}

func newRemoteStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the remote backend is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.service().RemoteAIStatus(cmd.Context())
			if err != nil {
				return err
			}
			if e.opts.json {
				return writeJSON(e.out, st)
			}
			printRemoteStatus(e, st)
			return nil
		},
	}
}

func printRemoteStatus(e *env, st client.RemoteAIStatus) {
	fmt.Fprintln(e.out, styles.RenderStatus(st.Configured(), st.Label()))
	if st.BaseURL != "" {
		fmt.Fprintln(e.out, RenderKeyValue("API URL", st.BaseURL))
	}
	if st.Timeout > 0 {
		fmt.Fprintln(e.out, RenderKeyValue("超时", fmt.Sprintf("%.0fs", st.Timeout)))
	}
}

func newRemoteConfigureCmd(e *env) *cobra.Command {
	var rc client.RemoteAIConfig
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Send remote AI credentials to the service",
		Long: `Send remote AI credentials to the service.

The API key is read from --api-key, or prompted for without echo when
stdin is a terminal. An empty --api-base-url keeps the service default;
a non-empty one must use https.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(rc.APIKey) == "" && e.stdinTTY() {
				key, err := readSecret("API Key: ")
				if err != nil {
					return NewCommandError("remote-ai", "configure", "could not read API key", err)
				}
				rc.APIKey = key
			}

			// SECURITY: the key is never logged or echoed back.
			res, err := e.service().ConfigureRemoteAI(cmd.Context(), rc)
			if err != nil {
				return err
			}
			if e.opts.json {
				return writeJSON(e.out, res)
			}
			msg := res.Message
			if msg == "" {
				msg = "API配置成功"
			}
			fmt.Fprintln(e.out, styles.RenderSuccess(msg))
			return nil
		},
	}
	cmd.Flags().StringVar(&rc.BaseURL, "api-base-url", "", "remote AI API URL (https)")
	cmd.Flags().StringVar(&rc.APIKey, "api-key", "", "remote AI API key")
	return cmd
}

// readSecret prompts without echo.
func readSecret(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	return line.PasswordPrompt(prompt)
}
