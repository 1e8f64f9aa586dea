// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlagent/cli/internal/conversation"
	"sqlagent/cli/internal/logging"
	"sqlagent/cli/internal/render"
	"sqlagent/cli/internal/terminal"
	"sqlagent/cli/internal/tui"
)

var (
	chatSession string
	chatNoSQL   bool
)

const chatPrompt = "› "

const chatHelp = `Commands inside the chat:
  exit, quit       leave the chat
  reset, /reset    start a new conversation
  /sql on|off      show or hide the SQL and rows panel
  /view            open the last SQL and rows in a scrollable viewer
  /run             re-run the last SQL read-only against your database
  /session         print the current session id
  /help            show this list`

// chatCmd runs the interactive conversation.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation with the SQL agent",
	Long: `The chat command reads questions line by line and shows each reply together with
the SQL the agent generated and the rows it returned.

` + chatHelp,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Continue an existing server session")
	chatCmd.Flags().BoolVar(&chatNoSQL, "no-sql", false, "Hide the generated SQL and rows panel")
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sess := conversation.NewSession(newAPI(), conversation.WithLogger(app.log))
	sess.SetShowSQL(app.cfg.ShowSQL && !chatNoSQL)
	if chatSession != "" {
		sess.Resume(chatSession)
	}

	c := newChatLoop(sess, newConversationRenderer(os.Stdout), func() render.Indicator {
		return newSpinnerIndicator(os.Stdout)
	})
	defer c.close()

	printChatBanner()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(chatPrompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)
		line = strings.TrimSpace(line)

		// The renderer echoes the question as a "You" message.
		if line != "" && terminal.Interactive() {
			terminal.ClearPreviousLines(displayWidth(chatPrompt + line))
		}

		if line != "" && c.handle(ctx, line) {
			return nil
		}
		if eof {
			fmt.Println()
			return nil
		}
	}
}

// chatLoop executes REPL lines against a session whose changes are drawn by
// a subscribed renderer.
type chatLoop struct {
	sess        *conversation.Session
	r           *render.Renderer
	newBusy     func() render.Indicator
	unsubscribe func()

	// stopBusy ends the spinner of a command in progress. It runs before the
	// renderer draws so the two never share a line.
	stopBusy func()
}

func newChatLoop(sess *conversation.Session, r *render.Renderer, newBusy func() render.Indicator) *chatLoop {
	c := &chatLoop{sess: sess, r: r, newBusy: newBusy}
	c.unsubscribe = sess.Subscribe(c.observe)
	return c
}

func (c *chatLoop) close() {
	c.endBusy()
	c.unsubscribe()
	c.r.Close()
}

func (c *chatLoop) observe(st conversation.State) {
	c.endBusy()
	c.r.Observe(st)
}

func (c *chatLoop) startBusy(text string) {
	c.endBusy()
	ind := c.newBusy()
	ind.Start(text)
	c.stopBusy = ind.Stop
}

func (c *chatLoop) endBusy() {
	if c.stopBusy != nil {
		c.stopBusy()
		c.stopBusy = nil
	}
}

// handle runs one input line and reports whether the chat should end.
func (c *chatLoop) handle(ctx context.Context, line string) bool {
	sess := c.sess
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "exit", "quit", "/exit", "/quit":
		return true

	case "reset", "/reset":
		rctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		c.startBusy("Resetting conversation")
		err := sess.Reset(rctx)
		c.endBusy()
		stop()
		if err != nil {
			// The renderer has already shown State.LastError.
			app.log.Warn("reset failed", zap.Error(err))
			pterm.Debug.Println(logging.PresentError("reset", err))
		}
		return false

	case "/sql":
		switch {
		case len(fields) > 1 && strings.EqualFold(fields[1], "off"):
			sess.SetShowSQL(false)
			pterm.Info.Println("SQL panel hidden")
		case len(fields) > 1 && strings.EqualFold(fields[1], "on"):
			sess.SetShowSQL(true)
			pterm.Info.Println("SQL panel shown")
		default:
			pterm.Info.Printf("SQL panel is %s (use /sql on or /sql off)\n", onOff(sess.State().ShowSQL))
		}
		return false

	case "/view":
		st := sess.State()
		if err := tui.Run(ctx, st.Snapshot, tui.Options{RowLimit: app.cfg.RowPreview, Session: st.Session()}); err != nil {
			pterm.Error.Println(err)
		}
		return false

	case "/run":
		sql := sess.State().Snapshot.SQL
		if strings.TrimSpace(sql) == "" {
			pterm.Warning.Println("No SQL to run yet. Ask a question first.")
			return false
		}
		rctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := runLocalQuery(rctx, sql); err != nil {
			pterm.Error.Println(logging.PresentError("Local query failed", err))
		}
		return false

	case "/session":
		if id := sess.State().Session(); id != "" {
			printField("Session: ", id)
		} else {
			pterm.Info.Println("No session yet. It starts with your first question.")
		}
		return false

	case "/help", "help", "?":
		pterm.Println(chatHelp)
		return false
	}

	if strings.HasPrefix(line, "/") {
		pterm.Warning.Printf("Unknown command %s (try /help)\n", fields[0])
		return false
	}

	actx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	submitted, err := sess.AskText(actx, line)
	if !submitted {
		pterm.Warning.Println("Still waiting for the previous answer")
		return false
	}
	if err != nil {
		// The apology is already part of the conversation.
		app.log.Warn("ask failed", zap.Error(err))
		pterm.Debug.Println(logging.PresentError("ask", err))
	}
	return false
}

// newConversationRenderer returns a renderer with Markdown replies and a
// spinner while the agent is working.
func newConversationRenderer(w io.Writer) *render.Renderer {
	opts := render.Options{
		Indicator: newSpinnerIndicator(w),
		RowLimit:  app.cfg.RowPreview,
	}
	if terminal.Interactive() {
		md, err := render.NewMarkdown(terminal.Width() - 4)
		if err != nil {
			app.log.Debug("markdown renderer unavailable", zap.Error(err))
		} else {
			opts.Markdown = md
		}
	}
	return render.New(w, opts)
}

// displayWidth returns the number of terminal cells s occupies.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func printChatBanner() {
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("SQL Agent Chat"))
	printField("→ API:  ", app.cfg.APIURL)
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("Ask about your data, or type /help. 'exit' leaves."))
	pterm.Println()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
