package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAskSendsContractBody(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ask" {
			t.Errorf("request = %s %s, want POST /api/ask", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &gotBody); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"session_id": "s1",
			"reply_text": "There are 5 rows.",
			"final_sql": "SELECT COUNT(*) FROM t",
			"rows": [{"count": 5}],
			"rowcount": 1,
			"messages": [{"role": "user", "text": "how many rows"}]
		}`)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL+"/", Options{Token: "tok"})
	resp, err := c.Ask(context.Background(), AskRequest{Question: "how many rows", ShowSQL: true})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if gotBody["question"] != "how many rows" || gotBody["show_sql"] != true {
		t.Errorf("body = %v", gotBody)
	}
	if v, ok := gotBody["session_id"]; !ok || v != nil {
		t.Errorf("session_id = %v (present %v), want explicit null", v, ok)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q", gotCT)
	}

	if resp.SessionID != "s1" || resp.ReplyText != "There are 5 rows." {
		t.Errorf("resp = %+v", resp)
	}
	if resp.SQL() != "SELECT COUNT(*) FROM t" {
		t.Errorf("SQL() = %q", resp.SQL())
	}
	if resp.RowCount != 1 || len(resp.Rows) != 1 || resp.Rows[0]["count"] != float64(5) {
		t.Errorf("rows = %v rowcount = %d", resp.Rows, resp.RowCount)
	}
	if len(resp.Messages) != 1 {
		t.Errorf("messages = %v", resp.Messages)
	}
}

func TestAskFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: true},
		{name: "not found", status: http.StatusNotFound, body: "", wantStatus: true},
		{name: "malformed json", status: http.StatusOK, body: "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTP(srv.URL, Options{}).Ask(context.Background(), AskRequest{Question: "q"})
			if err == nil {
				t.Fatal("Ask() error = nil, want failure")
			}
			var se *StatusError
			if got := errors.As(err, &se); got != tt.wantStatus {
				t.Fatalf("errors.As(StatusError) = %v, want %v (err %v)", got, tt.wantStatus, err)
			}
			if tt.wantStatus && se.Code != tt.status {
				t.Errorf("Code = %d, want %d", se.Code, tt.status)
			}
		})
	}
}

func TestResetSendsEmptyQuestion(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reset" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"session_id": "s2", "ok": true}`)
	}))
	defer srv.Close()

	sid := "s1"
	resp, err := NewHTTP(srv.URL, Options{}).Reset(context.Background(), ResetRequest{Question: "ignored", SessionID: &sid})
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if gotBody["question"] != "" || gotBody["session_id"] != "s1" {
		t.Errorf("body = %v", gotBody)
	}
	if resp.SessionID != "s2" || !resp.OK {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, body: `{"ok": true}`},
		{name: "not ok", status: http.StatusOK, body: `{"ok": false}`, wantErr: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/api/health" {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := NewHTTP(srv.URL, Options{}).Health(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Health() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
