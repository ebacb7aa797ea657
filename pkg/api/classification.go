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

// ClassifiableColumn is a column the analyzer found derivable
// categorical rules for, e.g. an age column with an "age_group" rule.
type ClassifiableColumn struct {
	Column         string   `json:"column"`
	Type           string   `json:"type"`
	SuggestedRules []string `json:"suggested_rules"`
}

// TableAnalysis is the response of the pre-classification analyze call.
type TableAnalysis struct {
	TableName           string               `json:"table_name"`
	ClassifiableColumns []ClassifiableColumn `json:"classifiable_columns"`
	TotalClassifiable   int                  `json:"total_classifiable"`
}

// ClassificationRule pairs a column with one rule to apply to it.
type ClassificationRule struct {
	Column string `json:"column"`
	Rule   string `json:"rule"`
}

// ClassificationResult is the response of executing classifications.
type ClassificationResult struct {
	Message                string  `json:"message"`
	TotalRecords           int     `json:"total_records"`
	ClassificationsApplied int     `json:"classifications_applied"`
	ClassifiedTable        string  `json:"classified_table"`
	ElapsedSeconds         float64 `json:"elapsed_seconds"`
}

// ClassificationHistoryEntry is one past classification run.
type ClassificationHistoryEntry struct {
	Timestamp              string  `json:"timestamp"`
	SourceTable            string  `json:"source_table"`
	ClassifiedTable        string  `json:"classified_table"`
	ClassificationsApplied int     `json:"classifications_applied"`
	TotalRecords           int     `json:"total_records"`
	ElapsedSeconds         float64 `json:"elapsed_seconds"`
}

// ModelMetrics reports the backend classifier's evaluation scores.
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
}

// AnalyzeTable asks the backend which columns of the active table can
// be classified and which rules it suggests for each.
func (c *Client) AnalyzeTable(ctx context.Context) (*TableAnalysis, error) {
	var analysis TableAnalysis
	if err := c.do(ctx, http.MethodPost, "/classify/analyze", map[string]any{}, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ExecuteClassification applies the selected rules to tableName. The
// selection must not be empty; that check runs locally so a misuse
// never reaches the network.
func (c *Client) ExecuteClassification(ctx context.Context, tableName string, rules []ClassificationRule) (*ClassificationResult, error) {
	if len(rules) == 0 {
		return nil, &ValidationError{
			Field:   "selection",
			Message: "select at least one classification to apply",
		}
	}
	body := map[string]any{
		"table_name":      tableName,
		"classifications": rules,
	}
	var result ClassificationResult
	if err := c.do(ctx, http.MethodPost, "/classify/execute", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClassificationHistory returns up to limit past runs, newest first.
func (c *Client) ClassificationHistory(ctx context.Context, limit int) ([]ClassificationHistoryEntry, error) {
	var resp struct {
		History []ClassificationHistoryEntry `json:"history"`
	}
	path := fmt.Sprintf("/classify/classification-history?limit=%d", limit)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// ClassificationMetrics returns the classifier's model metrics.
func (c *Client) ClassificationMetrics(ctx context.Context) (*ModelMetrics, error) {
	var metrics ModelMetrics
	if err := c.get(ctx, "/classify/metrics", &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ClassifiedSample is one classified case row for spot checks.
type ClassifiedSample struct {
	CaseID     string  `json:"case_id"`
	Age        int     `json:"age"`
	Symptoms   string  `json:"symptoms"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"classification_confidence"`
}

// ClassificationSamples returns up to limit classified cases,
// newest first.
func (c *Client) ClassificationSamples(ctx context.Context, limit int) ([]ClassifiedSample, error) {
	var resp struct {
		Samples []ClassifiedSample `json:"samples"`
	}
	path := fmt.Sprintf("/classify/samples?limit=%d", limit)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Samples, nil
}

// SeverityDistribution returns case counts per severity class.
func (c *Client) SeverityDistribution(ctx context.Context) (map[string]int, error) {
	var resp struct {
		Distribution map[string]int `json:"distribution"`
	}
	if err := c.get(ctx, "/classify/distribution", &resp); err != nil {
		return nil, err
	}
	return resp.Distribution, nil
}
