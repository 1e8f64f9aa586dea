package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoints contains REST API endpoint paths relative to the base URL.
type Endpoints struct {
	Ask    string `json:"ask"`
	Reset  string `json:"reset"`
	Health string `json:"health"`
}

// DefaultEndpoints returns the paths served by the SQL agent API.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Ask:    "/api/ask",
		Reset:  "/api/reset",
		Health: "/api/health",
	}
}

// Options configures the HTTP client.
type Options struct {
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
	// Token is sent as a bearer token when non-empty.
	Token string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Client replaces the underlying *http.Client (tests).
	Client *http.Client
}

// HTTP implements API over the REST endpoints.
type HTTP struct {
	// baseURL is the origin all paths are joined to (e.g., "http://localhost:8000")
	baseURL   string
	endpoints Endpoints
	client    *http.Client
	token     string
	userAgent string
}

// NewHTTP creates an HTTP client for baseURL with the default endpoints.
func NewHTTP(baseURL string, opts Options) *HTTP {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "sqlagent-cli/1.0"
	}
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: DefaultEndpoints(),
		client:    client,
		token:     strings.TrimSpace(opts.Token),
		userAgent: ua,
	}
}

// WithEndpoints returns a copy of h using custom endpoint paths.
func (h *HTTP) WithEndpoints(e Endpoints) *HTTP {
	cp := *h
	cp.endpoints = e
	return &cp
}

// BaseURL returns the origin requests are sent to.
func (h *HTTP) BaseURL() string { return h.baseURL }

// Ask calls POST /api/ask.
func (h *HTTP) Ask(ctx context.Context, in AskRequest) (*AskResponse, error) {
	var out AskResponse
	if err := h.postJSON(ctx, "ask", h.endpoints.Ask, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reset calls POST /api/reset. The question field is forced empty.
func (h *HTTP) Reset(ctx context.Context, in ResetRequest) (*ResetResponse, error) {
	in.Question = ""
	var out ResetResponse
	if err := h.postJSON(ctx, "reset", h.endpoints.Reset, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /api/health and expects {"ok": true}.
func (h *HTTP) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+h.endpoints.Health, nil)
	if err != nil {
		return err
	}
	h.setStandardHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus("health", resp); err != nil {
		return err
	}
	var out struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("health: decode response: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("health: backend reported not ok")
	}
	return nil
}

// postJSON marshals in, posts it to path and decodes the JSON reply into out.
func (h *HTTP) postJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	h.setStandardHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

// checkStatus turns any non-2xx response into a *StatusError.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}
