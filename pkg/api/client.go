// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package api is the HTTP client for the COVID-19 data pipeline backend.
//
// The backend is an opaque REST service (ingestion, cleaning,
// classification, dashboard, monitoring, RAG). This package wraps a
// single http.Client with a fixed base URL, a long request timeout for
// the slow Databricks-backed endpoints, and structured logging of every
// request, response, and error. There are no retries and no caching at
// this layer; every call is one round-trip.
//
// Errors follow a three-way taxonomy (see errors.go): TransportError
// when no response arrived, HTTPError for non-2xx statuses with the
// server's detail message, and ValidationError for local pre-flight
// checks that short-circuit before any network traffic.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saluddata/covidctl/pkg/logging"
)

// DefaultTimeout is the request timeout. Cleaning and classification
// runs execute synchronously on the backend and can take minutes.
const DefaultTimeout = 5 * time.Minute

// DefaultPrefix is the API path prefix. The backend mounts every router
// under /api; this is fixed configuration, not per-call variance.
const DefaultPrefix = "/api"

// Client issues requests against the pipeline backend.
//
// Client is stateless apart from its logger and is safe for concurrent
// use. Construct one per process with NewClient.
type Client struct {
	baseURL    string
	prefix     string
	httpClient *http.Client
	log        *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the default 300 second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithPrefix overrides the API path prefix.
func WithPrefix(prefix string) Option {
	return func(c *Client) { c.prefix = prefix }
}

// WithLogger sets the structured logger for request/response logging.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Client for the given base URL, e.g.
// "http://localhost:8000". A trailing slash is trimmed.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		prefix:     DefaultPrefix,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// url joins base URL, prefix, and path.
func (c *Client) url(path string) string {
	return c.baseURL + c.prefix + path
}

// do performs one JSON round-trip. body is marshalled when non-nil; the
// response is decoded into out when out is non-nil and the body is not
// empty. Every call is logged with a short request ID.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	reqID := uuid.NewString()[:8]
	url := c.url(path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("request", "id", reqID, "method", method, "url", url)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := &TransportError{URL: url, Err: err}
		c.log.Error("request failed", "id", reqID, "url", url, "error", err)
		return terr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := &TransportError{URL: url, Err: err}
		c.log.Error("reading response failed", "id", reqID, "url", url, "error", err)
		return terr
	}

	elapsed := time.Since(start)
	c.log.Debug("response", "id", reqID, "status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(), "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &HTTPError{Status: resp.StatusCode, Detail: extractDetail(data), Body: data}
		c.log.Error("backend error", "id", reqID, "status", resp.StatusCode, "detail", herr.Detail)
		return herr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", path, err)
		}
	}
	return nil
}

// get is shorthand for a body-less GET.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// postMultipart uploads a single file as multipart/form-data.
//
// The whole form is buffered in memory before sending; uploads are
// capped at 500 MB by the callers' pre-flight validation.
func (c *Client) postMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	reqID := uuid.NewString()[:8]
	url := c.url(path)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("creating multipart form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	c.log.Debug("upload request", "id", reqID, "url", url, "filename", filename, "bytes", buf.Len())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("upload failed", "id", reqID, "url", url, "error", err)
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("reading upload response failed", "id", reqID, "error", err)
		return &TransportError{URL: url, Err: err}
	}

	c.log.Debug("upload response", "id", reqID, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &HTTPError{Status: resp.StatusCode, Detail: extractDetail(data), Body: data}
		c.log.Error("backend rejected upload", "id", reqID, "status", resp.StatusCode, "detail", herr.Detail)
		return herr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding upload response: %w", err)
		}
	}
	return nil
}

// extractDetail pulls the "detail" field out of a FastAPI error body.
func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
