package dragscroll

import "sync"

// Listeners is an embeddable Target implementation with synchronous dispatch.
// The zero value is ready to use.
type Listeners struct {
	mu     sync.Mutex
	next   int
	byType map[EventType][]listener
}

type listener struct {
	id int
	h  Handler
}

// On registers h for t. The returned function removes exactly this
// registration and may be called more than once.
func (l *Listeners) On(t EventType, h Handler) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byType == nil {
		l.byType = make(map[EventType][]listener)
	}
	id := l.next
	l.next++
	l.byType[t] = append(l.byType[t], listener{id: id, h: h})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		ls := l.byType[t]
		for i, x := range ls {
			if x.id == id {
				l.byType[t] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers e to every handler registered for its type, in
// registration order, and reports whether the default action was prevented.
func (l *Listeners) Dispatch(e *Event) bool {
	l.mu.Lock()
	hs := make([]Handler, 0, len(l.byType[e.Type]))
	for _, x := range l.byType[e.Type] {
		hs = append(hs, x.h)
	}
	l.mu.Unlock()

	for _, h := range hs {
		h(e)
	}
	return e.DefaultPrevented()
}

// Count returns the number of registered handlers across all types.
func (l *Listeners) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ls := range l.byType {
		n += len(ls)
	}
	return n
}
