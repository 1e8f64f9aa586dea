// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version and API health",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion prints the CLI version and whether the configured API answers.
func printVersion(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := "ok"
	if err := newAPI().Health(ctx); err != nil {
		status = "unreachable"
	}
	fmt.Printf("sqlagent %s\napi %s (%s)\n", Version, app.cfg.APIURL, status)
}
