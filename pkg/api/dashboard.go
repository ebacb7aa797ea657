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

// TableType selects which derived stage of the dataset the dashboard
// reads: the raw upload, the cleaned table, or the classified table.
// "auto" lets the backend pick the most derived table available.
type TableType string

const (
	TableAuto       TableType = "auto"
	TableOriginal   TableType = "original"
	TableClean      TableType = "clean"
	TableClassified TableType = "classified"
)

// TableTypes lists the selectable table types in display order.
var TableTypes = []TableType{TableAuto, TableOriginal, TableClean, TableClassified}

// DashboardMetrics are the headline counters for the active table.
type DashboardMetrics struct {
	TotalCases  int    `json:"total_cases"`
	ActiveCases int    `json:"active_cases"`
	Recovered   int    `json:"recovered"`
	Deaths      int    `json:"deaths"`
	LastUpdated string `json:"last_updated"`
	Message     string `json:"message"`
}

// ColumnInfo describes one column of the active table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableSchema describes the active table.
type TableSchema struct {
	TableName    string       `json:"table_name"`
	TotalColumns int          `json:"total_columns"`
	Columns      []ColumnInfo `json:"columns"`
}

// ColumnStats holds the most frequent values of one column.
type ColumnStats struct {
	Column    string     `json:"column"`
	TopValues []TopValue `json:"top_values"`
}

// TopValue is one value/count pair in a column's frequency ranking.
type TopValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TimeSeriesPoint is one day of aggregated case counts.
type TimeSeriesPoint struct {
	Date       string `json:"date"`
	Cases      int    `json:"casos"`
	Deaths     int    `json:"muertes"`
	Vaccinated int    `json:"vacunados"`
}

// GeoEntry aggregates cases and deaths for one region.
type GeoEntry struct {
	Country    string `json:"country"`
	Region     string `json:"region"`
	TotalCases int    `json:"total_cases"`
	Deaths     int    `json:"deaths"`
}

// AgeBucket is one age-group slice of the case distribution.
type AgeBucket struct {
	AgeGroup string `json:"age_group"`
	Count    int    `json:"count"`
}

// VaccinationStats summarizes vaccinated versus unvaccinated cases.
type VaccinationStats struct {
	Total           int     `json:"total"`
	Vaccinated      int     `json:"vaccinated"`
	NotVaccinated   int     `json:"not_vaccinated"`
	VaccinationRate float64 `json:"vaccination_rate"`
}

// KPIReport is the backend's headline indicator set.
type KPIReport struct {
	TotalCases    int     `json:"total_cases"`
	CriticalCases int     `json:"critical_cases"`
	MortalityRate float64 `json:"mortality_rate"`
	AverageAge    float64 `json:"average_age"`
	UpdatedAt     string  `json:"updated_at"`
}

// Metrics fetches the headline counters for the given table type.
func (c *Client) Metrics(ctx context.Context, tableType TableType) (*DashboardMetrics, error) {
	var metrics DashboardMetrics
	path := "/dashboard/metrics?table_type=" + url.QueryEscape(string(tableType))
	if err := c.get(ctx, path, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// Schema fetches the column layout of the active table.
func (c *Client) Schema(ctx context.Context, tableType TableType) (*TableSchema, error) {
	var schema TableSchema
	path := "/dashboard/schema?table_type=" + url.QueryEscape(string(tableType))
	if err := c.get(ctx, path, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// DataPreview fetches up to limit rows of the active table.
func (c *Client) DataPreview(ctx context.Context, limit int, tableType TableType) ([]map[string]any, error) {
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	path := fmt.Sprintf("/dashboard/data-preview?limit=%d&table_type=%s", limit, url.QueryEscape(string(tableType)))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ColumnStats fetches the top values of one column.
func (c *Client) ColumnStats(ctx context.Context, column string, tableType TableType) (*ColumnStats, error) {
	var stats ColumnStats
	path := fmt.Sprintf("/dashboard/column-stats/%s?table_type=%s",
		url.PathEscape(column), url.QueryEscape(string(tableType)))
	if err := c.get(ctx, path, &stats); err != nil {
		return nil, err
	}
	if stats.Column == "" {
		stats.Column = column
	}
	return &stats, nil
}

// AvailableTables lists the tables the dashboard can visualize.
func (c *Client) AvailableTables(ctx context.Context) ([]string, error) {
	var resp struct {
		Tables []string `json:"tables"`
	}
	if err := c.get(ctx, "/dashboard/available-tables", &resp); err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

// TimeSeries fetches per-day aggregates for the last N days.
func (c *Client) TimeSeries(ctx context.Context, days int) ([]TimeSeriesPoint, error) {
	var resp struct {
		Data []TimeSeriesPoint `json:"data"`
	}
	path := fmt.Sprintf("/dashboard/timeseries?days=%d", days)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Geographic fetches per-region case aggregates, largest first.
func (c *Client) Geographic(ctx context.Context) ([]GeoEntry, error) {
	var resp struct {
		Data []GeoEntry `json:"data"`
	}
	if err := c.get(ctx, "/dashboard/geographic", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// AgeDistribution fetches case counts bucketed by age group.
func (c *Client) AgeDistribution(ctx context.Context) ([]AgeBucket, error) {
	var resp struct {
		Data []AgeBucket `json:"data"`
	}
	if err := c.get(ctx, "/dashboard/age-distribution", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Vaccination fetches the vaccinated/unvaccinated breakdown.
func (c *Client) Vaccination(ctx context.Context) (*VaccinationStats, error) {
	var stats VaccinationStats
	if err := c.get(ctx, "/dashboard/vaccination-stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// KPIs fetches the headline indicator set.
func (c *Client) KPIs(ctx context.Context) (*KPIReport, error) {
	var report KPIReport
	if err := c.get(ctx, "/dashboard/kpis", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DashboardSeverity returns the severity distribution of the active
// table, or an empty map when no classified data exists.
func (c *Client) DashboardSeverity(ctx context.Context) (map[string]int, error) {
	var resp struct {
		Data []struct {
			Severity string `json:"severity"`
			Value    int    `json:"value"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/dashboard/severity-distribution", &resp); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(resp.Data))
	for _, d := range resp.Data {
		out[d.Severity] = d.Value
	}
	return out, nil
}
