// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package tui implements the full-screen panel viewer: the generated SQL and
// the database response in two scrollable panes. Panes pan with a left-button
// drag (see package dragscroll), the mouse wheel, or the keyboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sqlagent/cli/internal/conversation"
	"sqlagent/cli/internal/dragscroll"
	"sqlagent/cli/internal/render"
)

const (
	paneSQL = iota
	paneRows
)

// sideBySideWidth is the terminal width from which panes are laid out next to
// each other instead of stacked.
const sideBySideWidth = 100

// Options configures the viewer.
type Options struct {
	// RowLimit caps the rows shown in the response pane.
	RowLimit int
	// Session is shown in the header when set.
	Session string
}

// Viewer is the bubbletea model of the panel viewer.
type Viewer struct {
	panes    [2]*Pane
	bindings [2]*dragscroll.Binding

	focus int
	hover int

	width, height int
	session       string
	st            styles
}

// New builds a viewer for snap and attaches drag scrolling to both panes.
func New(snap conversation.Snapshot, opts Options) *Viewer {
	resp := render.RowCountLine(snap)
	if rows := render.RowsJSON(snap.Rows, opts.RowLimit); rows != "" {
		resp += "\n\n" + rows
	}

	v := &Viewer{
		panes: [2]*Pane{
			NewPane("Generated SQL", render.SQLText(snap)),
			NewPane("Database Response", resp),
		},
		hover:   -1,
		session: opts.Session,
		st:      defaultStyles(),
	}
	for i, p := range v.panes {
		v.bindings[i] = dragscroll.Attach(p)
	}
	v.layout(80, 24)
	return v
}

// Pane returns the pane at index i (0 is SQL, 1 is rows).
func (v *Viewer) Pane(i int) *Pane { return v.panes[i] }

// Close detaches drag scrolling from both panes.
func (v *Viewer) Close() {
	for _, b := range v.bindings {
		if b != nil {
			b.Close()
		}
	}
}

// Init implements tea.Model.
func (v *Viewer) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.layout(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	case tea.MouseMsg:
		v.handleMouse(msg)
	}
	return v, nil
}

func (v *Viewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	p := v.panes[v.focus]
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return tea.Quit
	case "tab", "shift+tab":
		v.focus = 1 - v.focus
	case "up", "k":
		p.ScrollBy(0, -1)
	case "down", "j":
		p.ScrollBy(0, 1)
	case "left", "h":
		p.ScrollBy(-4, 0)
	case "right", "l":
		p.ScrollBy(4, 0)
	case "pgup":
		p.ScrollBy(0, -p.h)
	case "pgdown", " ":
		p.ScrollBy(0, p.h)
	case "home", "g":
		p.SetScrollOffset(0, 0)
	case "end", "G":
		p.SetScrollOffset(p.left, len(p.lines))
	}
	return nil
}

// handleMouse translates terminal mouse reports into dragscroll events.
func (v *Viewer) handleMouse(msg tea.MouseMsg) {
	at := v.paneAt(msg.X, msg.Y)

	// Leaving the hovered pane fires MouseLeave on it, like a pointer leaving
	// an element.
	if v.hover >= 0 && at != v.hover {
		v.panes[v.hover].Dispatch(&dragscroll.Event{Type: dragscroll.MouseLeave, Button: dragscroll.ButtonNone, X: msg.X, Y: msg.Y})
	}
	v.hover = at

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		v.scrollWheel(at, 0, -3)
		return
	case tea.MouseButtonWheelDown:
		v.scrollWheel(at, 0, 3)
		return
	case tea.MouseButtonWheelLeft:
		v.scrollWheel(at, -4, 0)
		return
	case tea.MouseButtonWheelRight:
		v.scrollWheel(at, 4, 0)
		return
	}

	if at < 0 {
		return
	}
	ev := &dragscroll.Event{Button: translateButton(msg.Button), X: msg.X, Y: msg.Y}
	switch msg.Action {
	case tea.MouseActionPress:
		ev.Type = dragscroll.MouseDown
		v.focus = at
	case tea.MouseActionRelease:
		ev.Type = dragscroll.MouseUp
	case tea.MouseActionMotion:
		ev.Type = dragscroll.MouseMove
	default:
		return
	}
	v.panes[at].Dispatch(ev)
}

func (v *Viewer) scrollWheel(at, dx, dy int) {
	if at < 0 {
		at = v.focus
	}
	v.panes[at].ScrollBy(dx, dy)
}

func (v *Viewer) paneAt(x, y int) int {
	for i, p := range v.panes {
		if p.contains(x, y) {
			return i
		}
	}
	return -1
}

func translateButton(b tea.MouseButton) dragscroll.Button {
	switch b {
	case tea.MouseButtonLeft:
		return dragscroll.ButtonLeft
	case tea.MouseButtonMiddle:
		return dragscroll.ButtonMiddle
	case tea.MouseButtonRight:
		return dragscroll.ButtonRight
	default:
		return dragscroll.ButtonNone
	}
}

// layout positions the panes for a width x height screen. One line is used by
// the header and one by the help footer; each pane box has a border and a
// title line around its content.
func (v *Viewer) layout(width, height int) {
	v.width, v.height = width, height
	bodyTop := 1
	bodyH := max(8, height-2)

	if width >= sideBySideWidth {
		boxW := width / 2
		v.panes[paneSQL].setRect(1, bodyTop+2, boxW-2, bodyH-3)
		v.panes[paneRows].setRect(boxW+1, bodyTop+2, width-boxW-2, bodyH-3)
		return
	}
	boxH := bodyH / 2
	v.panes[paneSQL].setRect(1, bodyTop+2, width-2, boxH-3)
	v.panes[paneRows].setRect(1, bodyTop+boxH+2, width-2, bodyH-boxH-3)
}

// View implements tea.Model.
func (v *Viewer) View() string {
	header := v.st.header.Render("sqlagent · result viewer")
	if v.session != "" {
		header += v.st.hint.Render("  session " + v.session)
	}

	a := v.panes[paneSQL].view(v.st, v.focus == paneSQL)
	b := v.panes[paneRows].view(v.st, v.focus == paneRows)
	var body string
	if v.width >= sideBySideWidth {
		body = lipgloss.JoinHorizontal(lipgloss.Top, a, b)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, a, b)
	}

	p := v.panes[v.focus]
	help := v.st.hint.Render(fmt.Sprintf(
		"drag/wheel/arrows scroll · tab switch pane · q quit · line %d/%d",
		min(p.top+1, max(1, len(p.lines))), len(p.lines)))

	return strings.Join([]string{header, body, help}, "\n")
}

// Run shows the viewer for snap until the user quits.
func Run(ctx context.Context, snap conversation.Snapshot, opts Options) error {
	v := New(snap, opts)
	defer v.Close()

	prog := tea.NewProgram(v,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
