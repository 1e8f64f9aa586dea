package conversation

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sqlagent/cli/internal/backend"
	apperrors "sqlagent/cli/internal/errors"
)

// Session runs the ask and reset cycles for one conversation.
type Session struct {
	api   backend.API
	store *Store
	newID func() string
	log   *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator replaces the UUID message id generator (tests).
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithStore uses an existing store instead of a fresh one.
func WithStore(st *Store) Option {
	return func(s *Session) {
		if st != nil {
			s.store = st
		}
	}
}

// NewSession creates a session that talks to api.
func NewSession(api backend.API, opts ...Option) *Session {
	s := &Session{
		api:   api,
		store: NewStore(),
		newID: uuid.NewString,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store exposes the underlying state store.
func (s *Session) Store() *Store { return s.store }

// State returns the current conversation state.
func (s *Session) State() State { return s.store.State() }

// Subscribe registers an observer of state changes.
func (s *Session) Subscribe(o Observer) func() { return s.store.Subscribe(o) }

// SetQuestion replaces the pending input text.
func (s *Session) SetQuestion(q string) { s.store.SetQuestion(q) }

// SetShowSQL toggles whether asks request the generated SQL.
func (s *Session) SetShowSQL(v bool) { s.store.SetShowSQL(v) }

// Resume adopts an existing server session handle.
func (s *Session) Resume(sessionID string) { s.store.SetSession(sessionID) }

// AskText sets q as the pending question and submits it.
func (s *Session) AskText(ctx context.Context, q string) (bool, error) {
	s.store.SetQuestion(q)
	return s.Ask(ctx)
}

// Ask submits the pending question. It blocks until the reply is reconciled.
//
// It reports false, with no effect, when the question is blank or another ask
// is still in flight. Otherwise the user message and a loading assistant
// placeholder are appended before the request is sent, and the placeholder is
// later updated in place with the reply or with ApologyText on failure. The
// returned error is the failure that produced the apology; the conversation
// stays usable either way.
func (s *Session) Ask(ctx context.Context) (bool, error) {
	t, ok := s.store.begin(s.newID)
	if !ok {
		return false, nil
	}
	s.log.Debug("ask dispatched",
		zap.String("placeholder", t.pendingID),
		zap.Bool("show_sql", t.showSQL),
		zap.Bool("fresh_session", t.session == nil))

	resp, err := s.api.Ask(ctx, backend.AskRequest{
		Question:  t.question,
		ShowSQL:   t.showSQL,
		SessionID: t.session,
	})
	if err == nil && resp == nil {
		err = apperrors.New(apperrors.AskFailed, "empty response")
	}
	if err != nil {
		s.log.Warn("ask failed", zap.Error(err))
		s.store.complete(t, nil, true)
		return true, apperrors.Wrap(apperrors.AskFailed, "ask question", err)
	}

	s.log.Debug("ask answered",
		zap.String("session", resp.SessionID),
		zap.Int("rowcount", resp.RowCount),
		zap.Bool("has_sql", resp.SQL() != ""))
	s.store.complete(t, resp, false)
	return true, nil
}

// Reset asks the server to discard the session and then clears local state.
// On failure nothing is cleared: the error is recorded in State.LastError,
// observers are notified and the error is returned.
func (s *Session) Reset(ctx context.Context) error {
	resp, err := s.api.Reset(ctx, backend.ResetRequest{SessionID: s.store.sessionID()})
	if err == nil && resp == nil {
		err = apperrors.New(apperrors.ResetFailed, "empty response")
	}
	if err != nil {
		wrapped := apperrors.Wrap(apperrors.ResetFailed, "reset conversation", err)
		s.log.Warn("reset failed", zap.Error(err))
		s.store.setError(wrapped)
		return wrapped
	}
	s.log.Debug("conversation reset", zap.String("session", resp.SessionID))
	s.store.applyReset(resp.SessionID)
	return nil
}
