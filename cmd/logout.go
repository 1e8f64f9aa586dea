// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sqlagent/cli/internal/keychain"
)

var logoutAll bool

// logoutCmd removes saved credentials from the OS keychain.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved API token",
	Long: `The logout command removes the API token stored by 'sqlagent login'.
With --all it also removes the database DSN stored by 'sqlagent connect'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if logoutAll {
			if err := km.ClearAll(); err != nil {
				return err
			}
			fmt.Println("✅ API token and database connection have been removed")
			return nil
		}
		if err := km.ClearAPIToken(); err != nil {
			return err
		}
		fmt.Println("✅ API token has been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Also remove the stored database connection")
}
