// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError indicates the request never produced a response:
// connection refused, DNS failure, or the 300 second client timeout.
type TransportError struct {
	// URL is the request URL that failed.
	URL string

	// Err is the underlying transport error.
	Err error
}

// Error returns a human-readable message.
func (e *TransportError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("request to %s timed out", e.URL)
	}
	return fmt.Sprintf("could not reach backend at %s: %v", e.URL, e.Err)
}

// Unwrap enables errors.Is/As through the chain.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout rather than a
// connectivity problem.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// HTTPError indicates the backend returned a non-2xx status.
//
// The backend (FastAPI) reports failures as {"detail": "..."}; Detail
// holds that field when present so callers can show the server's own
// message to the user.
type HTTPError struct {
	// Status is the HTTP status code.
	Status int

	// Detail is the server-supplied error detail, if any.
	Detail string

	// Body is the raw response body for debugging.
	Body []byte
}

// Error returns the detail when available, else a generic status line.
func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// ValidationError indicates a local pre-flight check failed. No network
// call is made when one of these is returned.
type ValidationError struct {
	// Field names what was being validated (e.g. "file", "selection").
	Field string

	// Message explains what is wrong.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// UserMessage extracts the best user-facing message from an error chain:
// the server's detail for HTTP errors, the transport description for
// connectivity failures, and the plain message otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	var transErr *TransportError
	if errors.As(err, &transErr) {
		return transErr.Error()
	}
	return err.Error()
}
