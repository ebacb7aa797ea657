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
	"strings"
)

// Question length limits, mirroring the backend's request validation so
// obviously invalid questions never leave the client.
const (
	minQuestionLen = 5
	maxQuestionLen = 500
)

// QueryAnswer is the backend's answer to a natural-language question.
// The backend translates the question into SQL, runs it, and generates
// a textual answer; the SQL, source table, and a bounded result preview
// come back as diagnostics.
type QueryAnswer struct {
	Answer        string           `json:"answer"`
	SQLQuery      string           `json:"sql_query"`
	TableUsed     string           `json:"table_used"`
	ExecutionTime float64          `json:"execution_time"`
	DataPreview   []map[string]any `json:"data_preview"`
	Sources       []string         `json:"sources"`
	QueryID       string           `json:"query_id"`
}

// QueryHistoryEntry is one past question/answer exchange.
type QueryHistoryEntry struct {
	QueryID   string `json:"query_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// RAGStats summarizes query volume and feedback.
type RAGStats struct {
	TotalQueries    int     `json:"total_queries"`
	AvgResponseTime float64 `json:"avg_response_time"`
	HelpfulRate     float64 `json:"helpful_rate"`
}

// ValidateQuestion applies the backend's 5..500 character constraint
// locally. Whitespace-only input is rejected as empty.
func ValidateQuestion(question string) error {
	trimmed := strings.TrimSpace(question)
	if len(trimmed) < minQuestionLen {
		return &ValidationError{
			Field:   "question",
			Message: fmt.Sprintf("question must be at least %d characters", minQuestionLen),
		}
	}
	if len(trimmed) > maxQuestionLen {
		return &ValidationError{
			Field:   "question",
			Message: fmt.Sprintf("question must be at most %d characters", maxQuestionLen),
		}
	}
	return nil
}

// Query sends one natural-language question to the RAG endpoint.
func (c *Client) Query(ctx context.Context, question string) (*QueryAnswer, error) {
	if err := ValidateQuestion(question); err != nil {
		return nil, err
	}
	body := map[string]string{"question": strings.TrimSpace(question)}
	var answer QueryAnswer
	if err := c.do(ctx, http.MethodPost, "/rag/query", body, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// QueryHistory returns up to limit recent exchanges, newest first.
func (c *Client) QueryHistory(ctx context.Context, limit int) ([]QueryHistoryEntry, error) {
	var resp struct {
		History []QueryHistoryEntry `json:"history"`
	}
	path := fmt.Sprintf("/rag/history?limit=%d", limit)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// SubmitFeedback records whether an answer was helpful.
func (c *Client) SubmitFeedback(ctx context.Context, queryID string, helpful bool) error {
	path := fmt.Sprintf("/rag/feedback?query_id=%s&helpful=%t", queryID, helpful)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// RAGStats returns aggregate query statistics.
func (c *Client) RAGStats(ctx context.Context) (*RAGStats, error) {
	var stats RAGStats
	if err := c.get(ctx, "/rag/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ClearQueryHistory deletes the stored query history.
func (c *Client) ClearQueryHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/rag/history", nil, nil)
}
