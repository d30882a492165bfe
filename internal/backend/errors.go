// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrTransport indicates the request never produced an HTTP response
	// (connection refused, DNS failure, timeout).
	ErrTransport = errors.New("backend unreachable")

	// ErrDecode indicates a 2xx response whose body could not be parsed.
	ErrDecode = errors.New("failed to parse response")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status     int
	StatusText string
	// Detail is the "error" field of the body when the backend sent one.
	Detail string
}

// Error reports the status the way users see it in the transcript.
func (e *APIError) Error() string {
	return fmt.Sprintf("Request failed with status %d: %s", e.Status, e.StatusText)
}

// Temporary reports whether the status suggests trying again later.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found"),
// falling back to the canonical text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
