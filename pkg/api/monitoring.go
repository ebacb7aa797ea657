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
	"net/url"
)

// Process statuses reported by the monitoring endpoint.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ProcessInfo is the reported state of one pipeline stage.
type ProcessInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	LastRun     string `json:"last_run"`
	Duration    string `json:"duration"`
	Progress    int    `json:"progress"`
}

// ProcessList is the full process snapshot; replaced wholesale per poll.
type ProcessList struct {
	Processes []ProcessInfo `json:"processes"`
}

// CountByStatus tallies processes per status client-side. The backend
// does not aggregate; the monitor view derives counts from the list.
func (p *ProcessList) CountByStatus() map[string]int {
	counts := make(map[string]int, 4)
	for _, proc := range p.Processes {
		counts[proc.Status]++
	}
	return counts
}

// LogEntry is one backend log line.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Process   string `json:"process"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Alert is one active system alert.
type Alert struct {
	Severity  string `json:"severity"`
	Process   string `json:"process"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SystemHealth is the backend's overall health report.
type SystemHealth struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	CheckedAt  string            `json:"checked_at"`
}

// Processes fetches the status of every pipeline stage.
func (c *Client) Processes(ctx context.Context) (*ProcessList, error) {
	var list ProcessList
	if err := c.get(ctx, "/monitoring/processes", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Logs fetches up to limit log entries, optionally filtered by level
// (ERROR, WARNING, INFO, SUCCESS). Empty level means all levels.
func (c *Client) Logs(ctx context.Context, limit int, level string) ([]LogEntry, error) {
	var resp struct {
		Logs []LogEntry `json:"logs"`
	}
	path := fmt.Sprintf("/monitoring/logs?limit=%d", limit)
	if level != "" {
		path += "&level=" + url.QueryEscape(level)
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// Alerts fetches the active system alerts.
func (c *Client) Alerts(ctx context.Context) ([]Alert, error) {
	var resp struct {
		Alerts []Alert `json:"alerts"`
	}
	if err := c.get(ctx, "/monitoring/alerts", &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// Health fetches the overall system health report.
func (c *Client) Health(ctx context.Context) (*SystemHealth, error) {
	var health SystemHealth
	if err := c.get(ctx, "/monitoring/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}
