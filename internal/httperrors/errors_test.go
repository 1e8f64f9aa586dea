package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"sqlagent/cli/internal/backend"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, Other},
		{"server status", &backend.StatusError{Op: "ask", Code: 502}, Server},
		{"client status", fmt.Errorf("wrapped: %w", &backend.StatusError{Op: "ask", Code: 404}), Client},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), Timeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "agent.invalid"}, DNS},
		{"refused op", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, Refused},
		{"refused text", errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), Refused},
		{"tls", errors.New("tls: failed to verify certificate: x509: unknown authority"), TLS},
		{"other", errors.New("unexpected EOF"), Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHostOf(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8000":       "localhost:8000",
		"https://agent.example.com/x": "agent.example.com",
		"not a url":                   "server",
	}
	for in, want := range tests {
		if got := HostOf(in); got != want {
			t.Errorf("HostOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatNetworkErrorWraps(t *testing.T) {
	base := errors.New("boom")
	err := FormatNetworkError(base, "asking", "http://localhost:8000")
	if !errors.Is(err, base) {
		t.Errorf("FormatNetworkError() does not wrap: %v", err)
	}
	if FormatNetworkError(nil, "asking", "") != nil {
		t.Error("nil error not passed through")
	}
}
