// Package errors defines typed errors with categories for user-friendly reporting.
// A Kind is machine-readable and stable; the Message is written for humans and
// the wrapped Err keeps the technical cause for logs and errors.Is/As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// AskFailed indicates the ask endpoint could not produce a reply.
	AskFailed Kind = "ask_failed"
	// ResetFailed indicates the reset endpoint call failed; local state was kept.
	ResetFailed Kind = "reset_failed"
	// HealthFailed indicates the backend health probe failed.
	HealthFailed Kind = "health_failed"
	// QueryFailed indicates a local re-run of generated SQL failed.
	QueryFailed Kind = "query_failed"
	// ConfigInvalid indicates unusable configuration.
	ConfigInvalid Kind = "config_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
