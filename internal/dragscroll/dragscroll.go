// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dragscroll lets a left-button mouse drag pan a scrollable element.
//
// An element is idle until a left-button press inside it. While dragging, each
// move sets the scroll offsets to the offsets at press time minus the pointer
// displacement since the press, and prevents the default action (text
// selection). Releasing the button or leaving the element returns to idle.
// Other buttons are ignored, and wheel or keyboard scrolling is left alone.
package dragscroll

import "sync"

// EventType enumerates the pointer events the behavior listens to.
type EventType int

const (
	MouseDown EventType = iota
	MouseUp
	MouseMove
	MouseLeave
)

func (t EventType) String() string {
	switch t {
	case MouseDown:
		return "mousedown"
	case MouseUp:
		return "mouseup"
	case MouseMove:
		return "mousemove"
	case MouseLeave:
		return "mouseleave"
	}
	return "unknown"
}

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
	ButtonNone
)

// Event is a pointer event in page coordinates.
type Event struct {
	Type   EventType
	Button Button
	X, Y   int

	prevented bool
}

// PreventDefault marks the event's default action as suppressed.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// Handler handles a dispatched event.
type Handler func(*Event)

// Target is something handlers can be registered on.
type Target interface {
	// On registers h for events of type t and returns a function removing it.
	On(t EventType, h Handler) (off func())
}

// Scroller exposes the scroll position of an element.
type Scroller interface {
	ScrollOffset() (left, top int)
	SetScrollOffset(left, top int)
}

// Element is a scrollable event target that can show a grabbing marker.
type Element interface {
	Target
	Scroller
	// SetGrabbing toggles the visual "grabbing" marker.
	SetGrabbing(on bool)
}

// Binding is an attached drag-scroll behavior. Close detaches it.
type Binding struct {
	el Element

	mu       sync.Mutex
	dragging bool
	startX   int
	startY   int
	scrollX  int
	scrollY  int

	offs      []func()
	closeOnce sync.Once
}

// Attach installs the behavior on el. All four listeners are registered
// together and removed together by Close.
func Attach(el Element) *Binding {
	b := &Binding{el: el}
	b.offs = []func(){
		el.On(MouseDown, b.onDown),
		el.On(MouseLeave, b.onStop),
		el.On(MouseUp, b.onStop),
		el.On(MouseMove, b.onMove),
	}
	return b
}

// Dragging reports whether a drag is in progress.
func (b *Binding) Dragging() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging
}

// Close removes every listener and clears the grabbing marker if a drag was
// in progress. It is safe to call more than once.
func (b *Binding) Close() {
	b.closeOnce.Do(func() {
		for _, off := range b.offs {
			off()
		}
		b.offs = nil
		b.mu.Lock()
		wasDragging := b.dragging
		b.dragging = false
		b.mu.Unlock()
		if wasDragging {
			b.el.SetGrabbing(false)
		}
	})
}

func (b *Binding) onDown(e *Event) {
	if e.Button != ButtonLeft {
		return
	}
	left, top := b.el.ScrollOffset()
	b.mu.Lock()
	b.dragging = true
	b.startX, b.startY = e.X, e.Y
	b.scrollX, b.scrollY = left, top
	b.mu.Unlock()
	b.el.SetGrabbing(true)
}

func (b *Binding) onStop(*Event) {
	b.mu.Lock()
	b.dragging = false
	b.mu.Unlock()
	b.el.SetGrabbing(false)
}

func (b *Binding) onMove(e *Event) {
	b.mu.Lock()
	if !b.dragging {
		b.mu.Unlock()
		return
	}
	left := b.scrollX - (e.X - b.startX)
	top := b.scrollY - (e.Y - b.startY)
	b.mu.Unlock()

	e.PreventDefault()
	b.el.SetScrollOffset(left, top)
}
