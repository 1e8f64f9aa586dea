// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render maps conversation state to terminal output.
//
// Frame renders a whole state at once (one-shot commands, tests). Renderer
// renders incrementally: subscribed to a conversation store, it prints each
// settled message once, drives a loading indicator while an assistant
// placeholder is pending, and prints the SQL and database-response panels when
// an ask completes.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"

	"sqlagent/cli/internal/conversation"
)

// Markdown turns Markdown source into terminal text.
type Markdown interface {
	Render(in string) (string, error)
}

// Indicator shows that something is in progress. The REPL backs it with a spinner.
type Indicator interface {
	Start(text string)
	Stop()
}

// NewMarkdown returns a glamour renderer wrapping at width columns.
func NewMarkdown(width int) (Markdown, error) {
	if width <= 0 {
		width = 80
	}
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}

// plainMarkdown prints Markdown source as-is.
type plainMarkdown struct{}

func (plainMarkdown) Render(in string) (string, error) { return in, nil }

// Options configures a Renderer.
type Options struct {
	// Markdown renders assistant replies; nil prints them verbatim.
	Markdown Markdown
	// Indicator is started while a reply is pending; nil disables it.
	Indicator Indicator
	// RowLimit caps the rows printed in the response panel.
	RowLimit int
}

var (
	userLabel      = pterm.NewStyle(pterm.FgLightBlue, pterm.Bold)
	assistantLabel = pterm.NewStyle(pterm.FgLightGreen, pterm.Bold)
	captionStyle   = pterm.NewStyle(pterm.FgGray)
	errorStyle     = pterm.NewStyle(pterm.FgRed)
)

// Renderer prints conversation state changes to w.
type Renderer struct {
	w    io.Writer
	opts Options

	mu          sync.Mutex
	lastVersion uint64
	generation  uint64
	printed     map[string]bool
	wasAsking   bool
	askGen      uint64
	spinning    bool
	lastErr     error
}

// New creates a Renderer writing to w.
func New(w io.Writer, opts Options) *Renderer {
	if opts.Markdown == nil {
		opts.Markdown = plainMarkdown{}
	}
	if opts.RowLimit <= 0 {
		opts.RowLimit = DefaultRowLimit
	}
	return &Renderer{w: w, opts: opts, printed: make(map[string]bool)}
}

// Observe renders what changed since the previous state. Older versions are ignored.
func (r *Renderer) Observe(st conversation.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st.Version != 0 && st.Version <= r.lastVersion {
		return
	}
	r.lastVersion = st.Version

	if st.Generation != r.generation {
		r.generation = st.Generation
		r.printed = make(map[string]bool)
		r.stopIndicator()
		fmt.Fprintln(r.w, captionStyle.Sprint("(conversation reset)"))
	}

	if st.LastError != nil && st.LastError != r.lastErr {
		r.stopIndicator()
		fmt.Fprintln(r.w, errorStyle.Sprint("✗ "+st.LastError.Error()))
	}
	r.lastErr = st.LastError

	pending := false
	for _, m := range st.Messages {
		if m.Loading {
			pending = true
			continue
		}
		if r.printed[m.ID] {
			continue
		}
		r.stopIndicator()
		fmt.Fprint(r.w, r.message(m))
		r.printed[m.ID] = true
	}

	if pending && !r.spinning && r.opts.Indicator != nil {
		r.opts.Indicator.Start(conversation.PlaceholderText)
		r.spinning = true
	}
	if !pending {
		r.stopIndicator()
	}

	if st.Asking && !r.wasAsking {
		r.askGen = st.Generation
	}
	// A completion that lands after a reset belongs to the old conversation.
	if r.wasAsking && !st.Asking && st.ShowSQL && st.Generation == r.askGen {
		fmt.Fprint(r.w, r.panel(st))
	}
	r.wasAsking = st.Asking
}

// Close stops the indicator if it is running.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopIndicator()
}

func (r *Renderer) stopIndicator() {
	if r.spinning && r.opts.Indicator != nil {
		r.opts.Indicator.Stop()
	}
	r.spinning = false
}

// Frame renders the complete state: transcript, then the panel when show-SQL is on.
func Frame(st conversation.State, opts Options) string {
	r := New(nil, opts)
	var b strings.Builder
	for _, m := range st.Messages {
		b.WriteString(r.message(m))
	}
	if st.ShowSQL && (len(st.Messages) > 0 || st.SQLLoading) {
		b.WriteString(r.panel(st))
	}
	return b.String()
}

func (r *Renderer) message(m conversation.Message) string {
	var b strings.Builder
	b.WriteString("\n")
	if m.Role == conversation.RoleUser {
		b.WriteString(userLabel.Sprint("You") + "\n")
		b.WriteString(m.Text + "\n")
		return b.String()
	}

	b.WriteString(assistantLabel.Sprint("Assistant") + "\n")
	if m.Loading {
		b.WriteString(captionStyle.Sprint(conversation.PlaceholderText) + "\n")
		return b.String()
	}
	out, err := r.opts.Markdown.Render(m.Text)
	if err != nil {
		out = m.Text
	}
	b.WriteString(strings.TrimRight(out, "\n") + "\n")
	return b.String()
}

func (r *Renderer) panel(st conversation.State) string {
	var b strings.Builder
	b.WriteString("\n")
	if st.SQLLoading {
		b.WriteString(captionStyle.Sprint("Generated SQL") + "\n")
		b.WriteString(GeneratingText + "\n")
		b.WriteString(captionStyle.Sprint("Database Response") + "\n")
		b.WriteString(QueryingText + "\n")
		return b.String()
	}

	b.WriteString(pterm.DefaultBox.
		WithTitle(captionStyle.Sprint("Generated SQL")).
		Sprint(SQLText(st.Snapshot)))
	b.WriteString("\n")
	b.WriteString(captionStyle.Sprint("Database Response") + "\n")
	b.WriteString(captionStyle.Sprint(RowCountLine(st.Snapshot)) + "\n")
	if js := RowsJSON(st.Snapshot.Rows, r.opts.RowLimit); js != "" {
		b.WriteString(js + "\n")
	}
	return b.String()
}
