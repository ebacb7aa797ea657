// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// AllowedUploadExtensions are the file types the backend can parse.
var AllowedUploadExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".json": true,
}

// MaxUploadSize is the client-side upload cap (500 MB).
const MaxUploadSize = 500 * 1024 * 1024

// UploadResult is the backend's response to a file upload.
type UploadResult struct {
	IngestionID  string `json:"ingestion_id"`
	Filename     string `json:"filename"`
	RecordsCount int    `json:"records_count"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
}

// UploadRecord is one entry in the upload history.
type UploadRecord struct {
	IngestionID  string `json:"ingestion_id"`
	Filename     string `json:"filename"`
	SizeBytes    int64  `json:"size_bytes"`
	RecordsCount int    `json:"records_count"`
	UploadedAt   string `json:"uploaded_at"`
	Status       string `json:"status"`
}

// UploadHistory lists past uploads.
type UploadHistory struct {
	Uploads []UploadRecord `json:"uploads"`
	Total   int            `json:"total"`
}

// DataSource describes a registered ingestion source.
type DataSource struct {
	SourceID    string `json:"source_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	LastUpdated string `json:"last_updated"`
}

// ValidateUploadFile performs the client-side pre-flight checks:
// extension must be one of csv/xlsx/xls/json and size must not exceed
// 500 MB. Returns a *ValidationError without touching the network.
func ValidateUploadFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedUploadExtensions[ext] {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported extension %q: only csv, xlsx, xls, and json files are accepted", ext),
		}
	}
	if size > MaxUploadSize {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file is %d MB, the limit is 500 MB", size/(1024*1024)),
		}
	}
	return nil
}

// Upload sends one data file to the ingestion endpoint. The caller is
// expected to have run ValidateUploadFile first; Upload repeats the
// check as a safety net.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader, size int64) (*UploadResult, error) {
	if err := ValidateUploadFile(filename, size); err != nil {
		return nil, err
	}
	var result UploadResult
	if err := c.postMultipart(ctx, "/ingest/upload", "file", filename, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadHistory returns the list of past uploads.
func (c *Client) UploadHistory(ctx context.Context) (*UploadHistory, error) {
	var history UploadHistory
	if err := c.get(ctx, "/ingest/history", &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// DataSources returns the registered ingestion sources.
func (c *Client) DataSources(ctx context.Context) ([]DataSource, error) {
	var resp struct {
		Sources []DataSource `json:"sources"`
	}
	if err := c.get(ctx, "/ingest/sources", &resp); err != nil {
		return nil, err
	}
	return resp.Sources, nil
}

// DeleteUpload removes one ingestion record from the backend.
func (c *Client) DeleteUpload(ctx context.Context, ingestionID string) error {
	return c.do(ctx, http.MethodDelete, "/ingest/uploads/"+ingestionID, nil, nil)
}
