// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "sqlagent/cli/internal/errors"
	"sqlagent/cli/internal/httperrors"
)

// healthCmd checks that the agent API is reachable.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the SQL agent API is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		start := time.Now()
		err := withSpinner(os.Stdout, "Checking "+httperrors.HostOf(app.cfg.APIURL), func() error {
			return newAPI().Health(ctx)
		})
		if err != nil {
			return apperrors.Wrap(apperrors.HealthFailed, app.cfg.APIURL,
				httperrors.FormatNetworkError(err, "checking API health", app.cfg.APIURL))
		}
		pterm.Success.Printf("API at %s is healthy (%s)\n", app.cfg.APIURL, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
