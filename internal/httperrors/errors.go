// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures talking to the agent API into
// user-friendly messages.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"sqlagent/cli/internal/backend"
)

// Class is the broad category of a network failure.
type Class int

const (
	Other Class = iota
	Timeout
	DNS
	Refused
	TLS
	Server
	Client
)

// Classify inspects err and returns its category.
func Classify(err error) Class {
	if err == nil {
		return Other
	}

	var se *backend.StatusError
	if errors.As(err, &se) {
		if se.Code >= 500 {
			return Server
		}
		return Client
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Timeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return Refused
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "connection refused"):
		return Refused
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return Timeout
	case strings.Contains(lower, "tls"), strings.Contains(lower, "x509"), strings.Contains(lower, "certificate"):
		return TLS
	}
	return Other
}

// FormatNetworkError prints a friendly explanation of err, which happened
// while doing action against baseURL, and returns err wrapped.
func FormatNetworkError(err error, action, baseURL string) error {
	if err == nil {
		return nil
	}
	host := HostOf(baseURL)
	headline, hints := describe(Classify(err), action, host)

	pterm.Error.Println(headline)
	for _, h := range hints {
		pterm.Println("  • " + h)
	}
	pterm.Println()

	details := err.Error()
	if len(details) > 200 {
		details = details[:200] + "..."
	}
	pterm.Debug.Printf("Technical details: %s\n", details)

	return fmt.Errorf("%s: %w", action, err)
}

func describe(c Class, action, host string) (string, []string) {
	switch c {
	case Timeout:
		return fmt.Sprintf("Timed out while %s", action), []string{
			"The agent may still be generating SQL for a slow query",
			"Raise the limit with --timeout or SQLAGENT_TIMEOUT",
		}
	case DNS:
		return fmt.Sprintf("Cannot resolve %s while %s", host, action), []string{
			"Check the API URL (--api-url or SQLAGENT_API_URL)",
			"Check your network and DNS settings",
		}
	case Refused:
		return fmt.Sprintf("Connection to %s refused while %s", host, action), []string{
			"Is the agent API running? Start it and retry",
			"Check the host and port in the API URL",
		}
	case TLS:
		return fmt.Sprintf("Secure connection to %s failed while %s", host, action), []string{
			"Check the server certificate and your system clock",
			"Use http:// for a local development server",
		}
	case Server:
		return fmt.Sprintf("The agent API failed while %s", action), []string{
			"The server reported an internal error, see its logs",
			"Try again, or reset the conversation with 'reset'",
		}
	case Client:
		return fmt.Sprintf("The agent API rejected the request while %s", action), []string{
			"Check that the API URL points at the agent service",
			"If the server requires a token, run 'sqlagent login'",
		}
	}
	return fmt.Sprintf("Cannot reach the agent API at %s while %s", host, action), []string{
		"Check your network connection",
		"Check the API URL (--api-url or SQLAGENT_API_URL)",
	}
}

// HostOf extracts host[:port] from a URL for messages.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
