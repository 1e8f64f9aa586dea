// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlagent/cli/internal/backend"
	"sqlagent/cli/internal/httperrors"
)

var resetSession string

// resetCmd discards a server-side conversation.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard a server session and start a new one",
	Long: `The reset command asks the agent to forget the conversation identified by
--session. It prints the session id the server hands back, which can be used
with 'sqlagent ask --session' to start over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		req := backend.ResetRequest{}
		if resetSession != "" {
			req.SessionID = &resetSession
		}

		var resp *backend.ResetResponse
		err := withSpinner(os.Stdout, "Resetting conversation", func() error {
			var rerr error
			resp, rerr = newAPI().Reset(ctx, req)
			return rerr
		})
		if err != nil {
			return httperrors.FormatNetworkError(err, "resetting the conversation", app.cfg.APIURL)
		}
		app.log.Debug("session reset", zap.String("old", resetSession), zap.String("new", resp.SessionID))

		pterm.Success.Println("Conversation reset")
		if resp.SessionID != "" {
			printField("New session: ", resp.SessionID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVar(&resetSession, "session", "", "Session id to reset")
}
