// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import "fmt"

// New creates a backend API implementation for baseURL.
// Returns the HTTP client (real backend).
func New(baseURL string, opts Options) API {
	return NewHTTP(baseURL, opts)
}

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed: %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Code, e.Body)
}
