// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sqlagent/cli/internal/dragscroll"
	"sqlagent/cli/internal/render"
)

// Pane is a scrollable text region of the viewer. It implements
// dragscroll.Element so a left-button drag pans its content.
type Pane struct {
	dragscroll.Listeners

	Title string

	lines    []string
	maxWidth int

	// content rectangle in screen cells
	x, y, w, h int

	left, top int
	grabbing  bool
}

// NewPane returns a pane showing text.
func NewPane(title, text string) *Pane {
	p := &Pane{Title: title, w: 1, h: 1}
	p.SetContent(text)
	return p
}

// SetContent replaces the pane text and re-clamps the offsets.
func (p *Pane) SetContent(text string) {
	p.lines = render.Lines(text)
	p.maxWidth = 0
	for _, l := range p.lines {
		if n := len([]rune(l)); n > p.maxWidth {
			p.maxWidth = n
		}
	}
	p.SetScrollOffset(p.left, p.top)
}

// ScrollOffset implements dragscroll.Scroller.
func (p *Pane) ScrollOffset() (left, top int) { return p.left, p.top }

// SetScrollOffset implements dragscroll.Scroller. Offsets are clamped to the
// content bounds.
func (p *Pane) SetScrollOffset(left, top int) {
	p.left = clamp(left, 0, max(0, p.maxWidth-p.w))
	p.top = clamp(top, 0, max(0, len(p.lines)-p.h))
}

// ScrollBy moves the offsets by dx, dy.
func (p *Pane) ScrollBy(dx, dy int) { p.SetScrollOffset(p.left+dx, p.top+dy) }

// SetGrabbing implements dragscroll.Element.
func (p *Pane) SetGrabbing(on bool) { p.grabbing = on }

// Grabbing reports whether the grabbing marker is shown.
func (p *Pane) Grabbing() bool { return p.grabbing }

// setRect positions the content area on screen.
func (p *Pane) setRect(x, y, w, h int) {
	p.x, p.y = x, y
	p.w, p.h = max(1, w), max(1, h)
	p.SetScrollOffset(p.left, p.top)
}

func (p *Pane) contains(x, y int) bool {
	return x >= p.x && x < p.x+p.w && y >= p.y && y < p.y+p.h
}

// visible returns the lines currently inside the content area.
func (p *Pane) visible() []string {
	out := make([]string, 0, p.h)
	for i := p.top; i < len(p.lines) && len(out) < p.h; i++ {
		r := []rune(p.lines[i])
		if p.left >= len(r) {
			out = append(out, "")
			continue
		}
		r = r[p.left:]
		if len(r) > p.w {
			r = r[:p.w]
		}
		out = append(out, string(r))
	}
	return out
}

func (p *Pane) view(st styles, focused bool) string {
	title := st.title.Render(p.Title)
	if p.grabbing {
		title += st.hint.Render("  ✋ dragging")
	}
	body := strings.Join(p.visible(), "\n")

	box := st.pane
	if focused {
		box = st.focused
	}
	return box.Width(p.w).Height(p.h + 1).Render(title + "\n" + body)
}

type styles struct {
	header  lipgloss.Style
	title   lipgloss.Style
	hint    lipgloss.Style
	pane    lipgloss.Style
	focused lipgloss.Style
}

func defaultStyles() styles {
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		title:   lipgloss.NewStyle().Bold(true),
		hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		pane:    border.BorderForeground(lipgloss.Color("8")),
		focused: border.BorderForeground(lipgloss.Color("12")),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
