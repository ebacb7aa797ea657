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
	"net/http"
)

// Missing-value strategies accepted by the cleaning endpoint.
const (
	MissingDrop       = "drop"
	MissingFillMean   = "fill_mean"
	MissingFillMedian = "fill_median"
	MissingFillZero   = "fill_zero"
)

// CleaningConfig selects the cleaning passes the backend applies.
type CleaningConfig struct {
	RemoveDuplicates   bool   `json:"remove_duplicates"`
	HandleMissing      string `json:"handle_missing"`
	DetectOutliers     bool   `json:"detect_outliers"`
	StandardizeFormats bool   `json:"standardize_formats"`
}

// Validate checks the config locally before submission.
func (cfg CleaningConfig) Validate() error {
	switch cfg.HandleMissing {
	case MissingDrop, MissingFillMean, MissingFillMedian, MissingFillZero:
		return nil
	default:
		return &ValidationError{
			Field:   "handle-missing",
			Message: fmt.Sprintf("unknown strategy %q: use drop, fill_mean, fill_median, or fill_zero", cfg.HandleMissing),
		}
	}
}

// DefaultCleaningConfig mirrors the backend defaults.
func DefaultCleaningConfig() CleaningConfig {
	return CleaningConfig{
		RemoveDuplicates:   true,
		HandleMissing:      MissingDrop,
		DetectOutliers:     true,
		StandardizeFormats: true,
	}
}

// CleaningJob is the response to submitting an asynchronous cleaning job.
type CleaningJob struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	StartedAt string `json:"started_at"`
}

// CleaningStatus reports the progress of a running cleaning job.
// Status is one of pending/running/completed/failed; Progress is 0-100.
type CleaningStatus struct {
	JobID       string         `json:"job_id"`
	Status      string         `json:"status"`
	Progress    int            `json:"progress"`
	Results     map[string]any `json:"results"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at"`
}

// Done reports whether the job reached a terminal state.
func (s *CleaningStatus) Done() bool {
	return s.Status == "completed" || s.Status == "failed"
}

// CleaningStats summarizes what a synchronous cleaning run changed.
type CleaningStats struct {
	OriginalRows      int     `json:"original_rows"`
	CleanRows         int     `json:"clean_rows"`
	DuplicatesRemoved int     `json:"duplicates_removed"`
	NullsHandled      int     `json:"nulls_handled"`
	OutliersRemoved   int     `json:"outliers_removed"`
	QualityScore      float64 `json:"quality_score"`
}

// CleaningRunResult is the response of the single-action cleaning run
// against the active Databricks table.
type CleaningRunResult struct {
	Message        string        `json:"message"`
	OriginalTable  string        `json:"original_table"`
	CleanTable     string        `json:"clean_table"`
	Stats          CleaningStats `json:"stats"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
}

// CleaningHistoryEntry is one past cleaning run.
type CleaningHistoryEntry struct {
	Timestamp      string  `json:"timestamp"`
	OriginalTable  string  `json:"original_table"`
	CleanTable     string  `json:"clean_table"`
	RowsBefore     int     `json:"rows_before"`
	RowsAfter      int     `json:"rows_after"`
	QualityScore   float64 `json:"quality_score"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// CleaningStrategy describes one selectable cleaning option.
type CleaningStrategy struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RunCleaning submits an asynchronous cleaning job with the given
// config. Poll CleaningStatus until Done.
func (c *Client) RunCleaning(ctx context.Context, cfg CleaningConfig) (*CleaningJob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var job CleaningJob
	body := map[string]any{"config": cfg}
	if err := c.do(ctx, http.MethodPost, "/clean/run", body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CleaningStatus fetches the current state of a cleaning job.
func (c *Client) CleaningStatus(ctx context.Context, jobID string) (*CleaningStatus, error) {
	var status CleaningStatus
	if err := c.get(ctx, "/clean/status/"+jobID, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CleanTable runs the single-action cleaning pass over the most recent
// uploaded table. The call blocks until the backend finishes.
func (c *Client) CleanTable(ctx context.Context) (*CleaningRunResult, error) {
	var result CleaningRunResult
	if err := c.do(ctx, http.MethodPost, "/clean/clean-databricks", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CleaningHistory returns up to limit past cleaning runs, newest first.
func (c *Client) CleaningHistory(ctx context.Context, limit int) ([]CleaningHistoryEntry, error) {
	var resp struct {
		History []CleaningHistoryEntry `json:"history"`
	}
	path := fmt.Sprintf("/clean/cleaning-history?limit=%d", limit)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// CancelCleaningJob asks the backend to cancel a running job.
func (c *Client) CancelCleaningJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodDelete, "/clean/jobs/"+jobID, nil, nil)
}

// CleaningStrategies lists the missing-value strategies the backend
// supports, with descriptions for display.
func (c *Client) CleaningStrategies(ctx context.Context) ([]CleaningStrategy, error) {
	var resp struct {
		Strategies []CleaningStrategy `json:"strategies"`
	}
	if err := c.get(ctx, "/clean/config/strategies", &resp); err != nil {
		return nil, err
	}
	return resp.Strategies, nil
}
