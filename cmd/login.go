// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sqlagent/cli/internal/keychain"
)

var loginToken string

// loginCmd stores a bearer token for agent deployments that require one.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Save an API token for the SQL agent service",
	Long: `The login command stores a bearer token in the OS keychain. The token is sent
with every request to the agent API. A local agent usually needs no token.

The token is read from --token, or prompted for without echo. SQLAGENT_API_TOKEN
overrides the stored token.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(loginToken)
		if token == "" {
			var err error
			token, err = promptSecret("API token: ")
			if err != nil {
				return err
			}
		}
		if token == "" {
			return errors.New("token is required")
		}

		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Printf("   Set %s instead.\n", EnvAPIToken)
			return err
		}
		if err := km.SaveAPIToken(token); err != nil {
			fmt.Println("❌ Failed to save the token securely.")
			return err
		}
		fmt.Println("✅ API token saved")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginToken, "token", "", "API token to store")
}

// promptSecret reads a line without echo when stdin is a terminal.
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
