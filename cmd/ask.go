// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlagent/cli/internal/backend"
	"sqlagent/cli/internal/conversation"
	"sqlagent/cli/internal/httperrors"
)

var (
	askSession string
	askNoSQL   bool
	askJSON    bool
)

// askCmd sends a single question and prints the answer.
var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask a single question and print the answer",
	Long: `The ask command sends one question to the agent and prints the reply, the
generated SQL and the returned rows. Pass --session with the printed session id
to ask a follow-up in the same conversation.`,
	Example: `  sqlagent ask how many orders were placed last week
  sqlagent ask --session 6f1c... and by which customers
  sqlagent ask --json top 5 products by revenue`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		question := strings.Join(args, " ")
		sess := conversation.NewSession(newAPI(), conversation.WithLogger(app.log))
		sess.SetShowSQL(app.cfg.ShowSQL && !askNoSQL)
		if askSession != "" {
			sess.Resume(askSession)
		}

		if !askJSON {
			r := newConversationRenderer(os.Stdout)
			defer r.Close()
			unsubscribe := sess.Subscribe(r.Observe)
			defer unsubscribe()
		}

		submitted, err := sess.AskText(ctx, question)
		if !submitted {
			return fmt.Errorf("question is empty")
		}
		if err != nil {
			return httperrors.FormatNetworkError(err, "asking the agent", app.cfg.APIURL)
		}

		st := sess.State()
		if askJSON {
			return printAskJSON(st)
		}
		if id := st.Session(); id != "" {
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("Follow up with: sqlagent ask --session %s <question>", id))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askSession, "session", "", "Continue an existing server session")
	askCmd.Flags().BoolVar(&askNoSQL, "no-sql", false, "Do not request or show the generated SQL")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the answer as JSON")
}

// askOutput is the --json shape of an answer.
type askOutput struct {
	SessionID string        `json:"session_id"`
	Reply     string        `json:"reply"`
	SQL       string        `json:"sql"`
	RowCount  int           `json:"rowcount"`
	Rows      []backend.Row `json:"rows"`
}

func printAskJSON(st conversation.State) error {
	out := askOutput{
		SessionID: st.Session(),
		SQL:       st.Snapshot.SQL,
		RowCount:  st.Snapshot.RowCount,
		Rows:      st.Snapshot.Rows,
	}
	if n := len(st.Messages); n > 0 {
		out.Reply = st.Messages[n-1].Text
	}
	if out.Rows == nil {
		out.Rows = []backend.Row{}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
