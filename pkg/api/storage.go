// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"context"
	"net/http"
	"net/url"
)

// StorageStatus describes the Delta Lake storage layer state.
type StorageStatus struct {
	StorageID      string  `json:"storage_id"`
	Location       string  `json:"location"`
	SizeMB         float64 `json:"size_mb"`
	IntegrityCheck bool    `json:"integrity_check"`
	BackupExists   bool    `json:"backup_exists"`
}

// TableInfo describes one stored table.
type TableInfo struct {
	TableName string  `json:"table_name"`
	RowCount  int     `json:"row_count"`
	SizeMB    float64 `json:"size_mb"`
	CreatedAt string  `json:"created_at"`
}

// StorageStatistics aggregates storage usage across tables.
type StorageStatistics struct {
	TotalTables int     `json:"total_tables"`
	TotalSizeMB float64 `json:"total_size_mb"`
	TotalRows   int     `json:"total_rows"`
}

// InitializeStorage creates the Delta Lake structures on the backend.
func (c *Client) InitializeStorage(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/storage/initialize", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// StorageStatus fetches the storage layer state.
func (c *Client) StorageStatus(ctx context.Context) (*StorageStatus, error) {
	var status StorageStatus
	if err := c.get(ctx, "/storage/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TableInfo fetches details of one stored table.
func (c *Client) TableInfo(ctx context.Context, tableName string) (*TableInfo, error) {
	var info TableInfo
	if err := c.get(ctx, "/storage/tables/info/"+url.PathEscape(tableName), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// StorageStatistics fetches aggregate storage usage.
func (c *Client) StorageStatistics(ctx context.Context) (*StorageStatistics, error) {
	var stats StorageStatistics
	if err := c.get(ctx, "/storage/statistics", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// TestStorageConnection verifies backend connectivity to the warehouse.
func (c *Client) TestStorageConnection(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/storage/test-connection", nil, &resp); err != nil {
		return "", err
	}
	if resp.Message != "" {
		return resp.Message, nil
	}
	return resp.Status, nil
}

// DropTable permanently deletes a stored table.
func (c *Client) DropTable(ctx context.Context, tableName string) error {
	return c.do(ctx, http.MethodDelete, "/storage/tables/"+url.PathEscape(tableName), nil, nil)
}
