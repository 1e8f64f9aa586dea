// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlagent/cli/internal/sqlexec"
)

// dbinfoCmd displays the database connection used by /run with the password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the database connection used to re-run SQL",
	Long: `The dbinfo command displays the database connection string (DSN) that /run uses,
with the password masked. The DSN comes from SQLAGENT_DSN, DATABASE_URL or the
OS keychain, in that order.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, origin, err := sqlexec.ResolveDSN(storedDSN)
		if errors.Is(err, sqlexec.ErrNoDSN) {
			pterm.Println("⚠️  No database connection configured")
			pterm.Println("   Please run: sqlagent connect")
			return nil
		}
		if err != nil {
			return err
		}

		switch origin {
		case "keychain":
			pterm.Println("Using DSN from OS keychain")
		default:
			pterm.Printf("Using DSN from %s environment variable\n", origin)
		}
		pterm.Println()

		body := maskDSN(dsn)
		if db := sqlexec.DatabaseName(dsn); db != "" {
			body += "\n\nDatabase: " + db
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(body)
		pterm.Println()
		pterm.Println("To update this connection, run: sqlagent connect")
		pterm.Println()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
