// Package conversation owns the chat transcript, the session handle and the
// latest query result snapshot, and drives the ask and reset cycles against
// the backend.
//
// All state lives in a Store. Messages are kept in a map keyed by id plus an
// insertion-order slice, so the assistant placeholder can be found and updated
// by id even when the transcript was appended to or cleared while its request
// was in flight. Every mutation publishes an immutable State to subscribers.
package conversation

import (
	"strings"
	"sync"

	"sqlagent/cli/internal/backend"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Texts used for the assistant placeholder and its outcomes.
const (
	PlaceholderText = "Searching…"
	NoReplyText     = "(no reply)"
	ApologyText     = "Sorry, something went wrong."
)

// Message is one transcript entry. Loading is set only on the assistant
// placeholder while its ask is in flight.
type Message struct {
	ID      string
	Role    Role
	Text    string
	Loading bool
}

// Snapshot is the SQL and result set returned by the most recent ask.
type Snapshot struct {
	SQL      string
	Rows     []backend.Row
	RowCount int
}

// Empty reports whether the snapshot carries nothing.
func (s Snapshot) Empty() bool {
	return s.SQL == "" && len(s.Rows) == 0 && s.RowCount == 0
}

// State is a point-in-time copy of the store handed to observers.
// Rows inside Snapshot are shared and must be treated as read-only.
type State struct {
	// Version increases with every published state.
	Version uint64
	// Generation increases with every successful reset.
	Generation uint64
	Messages   []Message
	// SessionID is nil until the server hands one out.
	SessionID *string
	Snapshot  Snapshot
	// Question is the pending, not yet submitted, input text.
	Question   string
	ShowSQL    bool
	Asking     bool
	SQLLoading bool
	// LastError is the most recent reset failure; cleared by a successful reset.
	LastError error
}

// Session returns the session handle or "" when none was issued yet.
func (s State) Session() string {
	if s.SessionID == nil {
		return ""
	}
	return *s.SessionID
}

// Observer receives every published State.
type Observer func(State)

// Store holds conversation state. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	byID  map[string]*Message
	order []string

	session    *string
	snapshot   Snapshot
	question   string
	showSQL    bool
	asking     bool
	sqlLoading bool
	lastErr    error

	version    uint64
	generation uint64

	observers map[int]Observer
	nextObs   int
}

// NewStore creates an empty store with show-SQL enabled.
func NewStore() *Store {
	return &Store{
		byID:      make(map[string]*Message),
		showSQL:   true,
		observers: make(map[int]Observer),
	}
}

// Subscribe registers o and returns a function that removes it.
// Observers run synchronously after the lock is released; they may read the
// store but states can arrive out of order under concurrent mutation, so they
// should ignore a Version older than one already seen.
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Len returns the number of messages in the transcript.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Message returns the message with id, if it still exists.
func (s *Store) Message(id string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// Append adds messages at the end of the transcript.
func (s *Store) Append(msgs ...Message) {
	s.mutate(func() {
		for _, m := range msgs {
			s.appendLocked(m)
		}
	})
}

// UpdateMessage applies fn to the message with id and reports whether it existed.
// The id itself cannot be changed.
func (s *Store) UpdateMessage(id string, fn func(*Message)) bool {
	found := false
	s.mutate(func() {
		found = s.updateLocked(id, fn)
	})
	return found
}

// SetQuestion replaces the pending input text.
func (s *Store) SetQuestion(q string) {
	s.mutate(func() { s.question = q })
}

// SetShowSQL toggles the show-SQL preference sent with each ask.
func (s *Store) SetShowSQL(v bool) {
	s.mutate(func() { s.showSQL = v })
}

// SetSession adopts a session handle, e.g. one passed on the command line.
func (s *Store) SetSession(id string) {
	s.mutate(func() { s.session = stringPtr(id) })
}

// ticket carries what a dispatched ask needs to reconcile its reply.
type ticket struct {
	question   string
	showSQL    bool
	session    *string
	pendingID  string
	generation uint64
}

// begin starts an ask for the pending question. It returns false, without any
// mutation, when the question is blank or another ask is in flight.
func (s *Store) begin(newID func() string) (ticket, bool) {
	var t ticket
	ok := false
	s.mutateIf(func() bool {
		if strings.TrimSpace(s.question) == "" || s.asking {
			return false
		}
		s.asking = true
		s.sqlLoading = true
		s.snapshot = Snapshot{}

		userID, pendingID := newID(), newID()
		s.appendLocked(Message{ID: userID, Role: RoleUser, Text: s.question})
		s.appendLocked(Message{ID: pendingID, Role: RoleAssistant, Text: PlaceholderText, Loading: true})

		t = ticket{
			question:   s.question,
			showSQL:    s.showSQL,
			session:    copyPtr(s.session),
			pendingID:  pendingID,
			generation: s.generation,
		}
		s.question = ""
		ok = true
		return true
	})
	return t, ok
}

// complete reconciles the placeholder of t with the server reply or failure.
// A completion for a conversation that has since been reset only clears the
// in-flight flags.
func (s *Store) complete(t ticket, resp *backend.AskResponse, failed bool) {
	s.mutate(func() {
		defer func() {
			s.sqlLoading = false
			s.asking = false
		}()
		if t.generation != s.generation {
			return
		}
		if failed {
			s.updateLocked(t.pendingID, func(m *Message) {
				m.Text = ApologyText
				m.Loading = false
			})
			return
		}

		s.session = stringPtr(resp.SessionID)
		s.updateLocked(t.pendingID, func(m *Message) {
			m.Text = resp.ReplyText
			if m.Text == "" {
				m.Text = NoReplyText
			}
			m.Loading = false
		})
		rows := resp.Rows
		if rows == nil {
			rows = []backend.Row{}
		}
		s.snapshot = Snapshot{SQL: resp.SQL(), Rows: rows, RowCount: resp.RowCount}
	})
}

// applyReset clears local state to match a server-side reset.
func (s *Store) applyReset(sessionID string) {
	s.mutate(func() {
		s.byID = make(map[string]*Message)
		s.order = nil
		s.snapshot = Snapshot{}
		s.question = ""
		s.sqlLoading = false
		s.session = stringPtr(sessionID)
		s.lastErr = nil
		s.generation++
	})
}

func (s *Store) setError(err error) {
	s.mutate(func() { s.lastErr = err })
}

func (s *Store) sessionID() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPtr(s.session)
}

func (s *Store) mutate(fn func()) {
	s.mutateIf(func() bool {
		fn()
		return true
	})
}

// mutateIf runs fn under the lock and publishes the new state when fn reports a change.
func (s *Store) mutateIf(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	st := s.stateLocked()
	obs := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	s.mu.Unlock()

	for _, o := range obs {
		o(st)
	}
}

func (s *Store) appendLocked(m Message) {
	if _, dup := s.byID[m.ID]; dup {
		*s.byID[m.ID] = m
		return
	}
	cp := m
	s.byID[m.ID] = &cp
	s.order = append(s.order, m.ID)
}

func (s *Store) updateLocked(id string, fn func(*Message)) bool {
	m, ok := s.byID[id]
	if !ok {
		return false
	}
	fn(m)
	m.ID = id
	return true
}

func (s *Store) stateLocked() State {
	msgs := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		msgs = append(msgs, *s.byID[id])
	}
	return State{
		Version:    s.version,
		Generation: s.generation,
		Messages:   msgs,
		SessionID:  copyPtr(s.session),
		Snapshot:   s.snapshot,
		Question:   s.question,
		ShowSQL:    s.showSQL,
		Asking:     s.asking,
		SQLLoading: s.sqlLoading,
		LastError:  s.lastErr,
	}
}

func stringPtr(v string) *string { return &v }

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
