// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the client for the SQL agent HTTP API.
// It defines the wire contract for the ask, reset and health endpoints and an
// HTTP implementation; the conversation layer depends only on the API interface
// so tests can substitute fakes.
package backend

import "context"

// API defines backend operations the CLI depends on.
// Every call is attempted exactly once; no implementation retries.
type API interface {
	// Ask sends a question and returns the assistant reply plus the generated SQL snapshot.
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)
	// Reset discards server-side conversation state and returns the (possibly rotated) session id.
	Reset(ctx context.Context, req ResetRequest) (*ResetResponse, error)
	// Health reports whether the backend answers its health probe.
	Health(ctx context.Context) error
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
	ShowSQL  bool   `json:"show_sql"`
	// SessionID is nil for a fresh session and encodes as JSON null.
	SessionID *string `json:"session_id"`
}

// Row is one database row as returned by the server: column name to value.
type Row = map[string]any

// TurnMessage is an entry of the server-side transcript echoed in AskResponse.
type TurnMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// AskResponse is the body returned by POST /api/ask.
type AskResponse struct {
	SessionID string  `json:"session_id"`
	ReplyText string  `json:"reply_text"`
	FinalSQL  *string `json:"final_sql,omitempty"`
	Rows      []Row   `json:"rows"`
	RowCount  int     `json:"rowcount"`
	// Messages is decoded for completeness; the conversation keeps its own transcript.
	Messages []TurnMessage `json:"messages"`
}

// SQL returns the generated SQL or "" when the server sent none.
func (r *AskResponse) SQL() string {
	if r == nil || r.FinalSQL == nil {
		return ""
	}
	return *r.FinalSQL
}

// ResetRequest is the body of POST /api/reset. Question is always empty.
type ResetRequest struct {
	Question  string  `json:"question"`
	SessionID *string `json:"session_id"`
}

// ResetResponse is the body returned by POST /api/reset.
type ResetResponse struct {
	SessionID string `json:"session_id"`
	OK        bool   `json:"ok"`
}
