package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"sqlagent/cli/internal/backend"
	"sqlagent/cli/internal/conversation"
)

func testSnapshot() conversation.Snapshot {
	rows := make([]backend.Row, 150)
	for i := range rows {
		rows[i] = backend.Row{"id": i}
	}
	return conversation.Snapshot{
		SQL:      "SELECT " + strings.Repeat("column_name, ", 20) + "id FROM orders",
		Rows:     rows,
		RowCount: len(rows),
	}
}

// At 80x24 the panes are stacked: SQL content starts at (1,3) and the rows
// content at (1,14), both 78x8 cells.
func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	v := New(testSnapshot(), Options{})
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	t.Cleanup(v.Close)
	return v
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func TestDragScrollsPane(t *testing.T) {
	tests := []struct {
		name     string
		pane     int
		press    [2]int
		move     [2]int
		wantLeft int
		wantTop  int
	}{
		{name: "rows drag up", pane: paneRows, press: [2]int{10, 21}, move: [2]int{10, 16}, wantTop: 5},
		{name: "sql drag left", pane: paneSQL, press: [2]int{20, 4}, move: [2]int{12, 4}, wantLeft: 8},
		{name: "drag toward origin clamps", pane: paneRows, press: [2]int{10, 14}, move: [2]int{10, 20}, wantTop: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViewer(t)
			v.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, tt.press[0], tt.press[1]))
			if !v.Pane(tt.pane).Grabbing() {
				t.Fatal("pane not grabbing after left press")
			}
			v.Update(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, tt.move[0], tt.move[1]))
			v.Update(mouse(tea.MouseActionRelease, tea.MouseButtonNone, tt.move[0], tt.move[1]))

			left, top := v.Pane(tt.pane).ScrollOffset()
			if left != tt.wantLeft || top != tt.wantTop {
				t.Errorf("offset = (%d,%d), want (%d,%d)", left, top, tt.wantLeft, tt.wantTop)
			}
			if v.Pane(tt.pane).Grabbing() {
				t.Error("still grabbing after release")
			}
		})
	}
}

func TestMotionOutsidePaneEndsDrag(t *testing.T) {
	v := newTestViewer(t)
	rows := v.Pane(paneRows)

	v.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 10, 18))
	v.Update(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 10, 0))
	if rows.Grabbing() || v.bindings[paneRows].Dragging() {
		t.Fatal("drag continued after leaving the pane")
	}

	v.Update(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 10, 15))
	if _, top := rows.ScrollOffset(); top != 0 {
		t.Errorf("pane scrolled after drag ended: top = %d", top)
	}
}

func TestNonLeftButtonsDoNotDrag(t *testing.T) {
	for _, b := range []tea.MouseButton{tea.MouseButtonRight, tea.MouseButtonMiddle} {
		t.Run(fmt.Sprint(b), func(t *testing.T) {
			v := newTestViewer(t)
			v.Update(mouse(tea.MouseActionPress, b, 10, 18))
			v.Update(mouse(tea.MouseActionMotion, b, 10, 16))
			if _, top := v.Pane(paneRows).ScrollOffset(); top != 0 {
				t.Errorf("top = %d, want 0", top)
			}
			if v.Pane(paneRows).Grabbing() {
				t.Error("grabbing set for non-left button")
			}
		})
	}
}

func TestWheelAndKeysScroll(t *testing.T) {
	v := newTestViewer(t)

	v.Update(mouse(tea.MouseActionPress, tea.MouseButtonWheelDown, 10, 18))
	if _, top := v.Pane(paneRows).ScrollOffset(); top != 3 {
		t.Errorf("wheel: top = %d, want 3", top)
	}

	// Focus starts on the SQL pane.
	v.Update(tea.KeyMsg{Type: tea.KeyRight})
	if left, _ := v.Pane(paneSQL).ScrollOffset(); left != 4 {
		t.Errorf("right key: left = %d, want 4", left)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	if _, top := v.Pane(paneRows).ScrollOffset(); top != 11 {
		t.Errorf("pgdown: top = %d, want 11", top)
	}
}

func TestQuitKey(t *testing.T) {
	v := newTestViewer(t)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestCloseDetachesPanes(t *testing.T) {
	v := New(testSnapshot(), Options{})
	for i := range v.panes {
		if n := v.Pane(i).Count(); n != 4 {
			t.Fatalf("pane %d has %d listeners, want 4", i, n)
		}
	}
	v.Close()
	v.Close()
	for i := range v.panes {
		if n := v.Pane(i).Count(); n != 0 {
			t.Errorf("pane %d has %d listeners after Close", i, n)
		}
	}
}

func TestViewShowsPanels(t *testing.T) {
	v := New(conversation.Snapshot{}, Options{Session: "s1"})
	defer v.Close()
	out := v.View()
	for _, want := range []string{"Generated SQL", "(no SQL generated)", "Database Response", "Rows: 0", "session s1"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
