// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	appconfig "github.com/saluddata/covidctl/cmd/covidctl/config"
	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/cache"
	"github.com/saluddata/covidctl/pkg/logging"
)

func TestPickStatColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []api.ColumnInfo
		max     int
		want    []string
	}{
		{
			name: "derived columns win over raw ones",
			columns: []api.ColumnInfo{
				{Name: "ciudad"},
				{Name: "edad_clasificacion"},
				{Name: "estado_severidad"},
				{Name: "fecha"},
			},
			max:  2,
			want: []string{"edad_clasificacion", "estado_severidad"},
		},
		{
			name: "raw columns fill when too few derived",
			columns: []api.ColumnInfo{
				{Name: "ciudad"},
				{Name: "edad_grupo"},
				{Name: "fecha"},
			},
			max:  3,
			want: []string{"edad_grupo", "ciudad", "fecha"},
		},
		{
			name: "no derived columns falls back to leading columns",
			columns: []api.ColumnInfo{
				{Name: "ciudad"},
				{Name: "edad"},
				{Name: "fecha"},
				{Name: "estado"},
			},
			max:  3,
			want: []string{"ciudad", "edad", "fecha"},
		},
		{
			name:    "empty schema",
			columns: nil,
			max:     3,
			want:    []string{},
		},
		{
			name: "zero max",
			columns: []api.ColumnInfo{
				{Name: "ciudad"},
			},
			max:  0,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickStatColumns(tt.columns, tt.max)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("pickStatColumns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func testModel() dashboardModel {
	fetch := func(api.TableType) (*dashboardData, error) {
		return &dashboardData{}, nil
	}
	return newDashboardModel(fetch, nil, api.TableAuto, 30*time.Second)
}

func TestDashboardStaleResponseIgnored(t *testing.T) {
	m := testModel()
	m.gen = 2
	fresh := &dashboardData{Metrics: &api.DashboardMetrics{TotalCases: 100}}
	updated, _ := m.Update(dashboardMsg{gen: 2, data: fresh})
	m = updated.(dashboardModel)

	// A late response from generation 1 must not clobber the view.
	stale := &dashboardData{Metrics: &api.DashboardMetrics{TotalCases: 1}}
	updated, _ = m.Update(dashboardMsg{gen: 1, data: stale})
	m = updated.(dashboardModel)

	if m.data.Metrics.TotalCases != 100 {
		t.Errorf("stale response overwrote the view: cases = %d", m.data.Metrics.TotalCases)
	}
}

func TestDashboardTableSwitchBumpsGeneration(t *testing.T) {
	m := testModel()
	before := m.gen
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = updated.(dashboardModel)
	if m.tableType != api.TableOriginal {
		t.Errorf("table type = %q, want %q", m.tableType, api.TableOriginal)
	}
	if m.gen != before+1 {
		t.Errorf("generation = %d, want %d", m.gen, before+1)
	}
	if cmd == nil {
		t.Error("table switch returned no fetch command")
	}
}

func TestDashboardSameTableKeyIsNoop(t *testing.T) {
	m := testModel()
	before := m.gen
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	m = updated.(dashboardModel)
	if m.gen != before || cmd != nil {
		t.Error("re-selecting the current table type triggered a refetch")
	}
}

func TestDashboardErrorKeepsLastData(t *testing.T) {
	m := testModel()
	good := &dashboardData{Metrics: &api.DashboardMetrics{TotalCases: 7}}
	updated, _ := m.Update(dashboardMsg{gen: 0, data: good})
	m = updated.(dashboardModel)

	m.gen = 1
	updated, _ = m.Update(dashboardMsg{gen: 1, err: context.DeadlineExceeded})
	m = updated.(dashboardModel)
	if m.err == nil {
		t.Error("error not recorded")
	}
	if m.data == nil || m.data.Metrics.TotalCases != 7 {
		t.Error("error cleared the last good snapshot")
	}
}

func TestDashboardDataEmpty(t *testing.T) {
	empty := &dashboardData{Metrics: &api.DashboardMetrics{}}
	if !empty.Empty() {
		t.Error("zero metrics with no preview should read as empty")
	}
	full := &dashboardData{
		Metrics: &api.DashboardMetrics{TotalCases: 5},
	}
	if full.Empty() {
		t.Error("snapshot with cases should not read as empty")
	}
}

// dashboardTestServer serves minimal valid responses for every
// dashboard endpoint and counts total hits.
func dashboardTestServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	respond := func(v any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(v)
		}
	}
	mux.HandleFunc("/api/dashboard/metrics", respond(api.DashboardMetrics{TotalCases: 10}))
	mux.HandleFunc("/api/dashboard/schema", respond(api.TableSchema{
		TableName:    "covid_clean",
		TotalColumns: 2,
		Columns:      []api.ColumnInfo{{Name: "ciudad"}, {Name: "edad_grupo"}},
	}))
	mux.HandleFunc("/api/dashboard/data-preview", respond(map[string]any{
		"data": []map[string]any{{"ciudad": "Bogotá"}},
	}))
	mux.HandleFunc("/api/dashboard/severity-distribution", respond(map[string]any{
		"data": []map[string]any{{"severity": "leve", "value": 8}},
	}))
	mux.HandleFunc("/api/dashboard/column-stats/", respond(api.ColumnStats{
		TopValues: []api.TopValue{{Value: "Bogotá", Count: 5}},
	}))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchDashboardDataUsesCache(t *testing.T) {
	var hits atomic.Int64
	server := dashboardTestServer(t, &hits)

	log := logging.New(logging.Config{Level: logging.ParseLevel("error"), Quiet: true})
	client := api.NewClient(server.URL, api.WithLogger(log))
	c, err := cache.OpenInMemory(log)
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer c.Close()

	cfg := appconfig.DashboardConfig{RefreshSeconds: 30, PreviewRows: 5, StatColumns: 2}
	first, err := fetchDashboardData(context.Background(), client, c, api.TableAuto, cfg)
	if err != nil {
		t.Fatalf("first fetch error = %v", err)
	}
	if first.Metrics.TotalCases != 10 {
		t.Errorf("TotalCases = %d, want 10", first.Metrics.TotalCases)
	}
	firstHits := hits.Load()
	if firstHits == 0 {
		t.Fatal("first fetch never reached the server")
	}

	second, err := fetchDashboardData(context.Background(), client, c, api.TableAuto, cfg)
	if err != nil {
		t.Fatalf("second fetch error = %v", err)
	}
	if hits.Load() != firstHits {
		t.Errorf("second fetch hit the server: %d -> %d hits", firstHits, hits.Load())
	}
	if second.Metrics.TotalCases != 10 {
		t.Errorf("cached TotalCases = %d, want 10", second.Metrics.TotalCases)
	}
}

func TestFetchDashboardDataNilCache(t *testing.T) {
	var hits atomic.Int64
	server := dashboardTestServer(t, &hits)

	log := logging.New(logging.Config{Level: logging.ParseLevel("error"), Quiet: true})
	client := api.NewClient(server.URL, api.WithLogger(log))

	cfg := appconfig.DashboardConfig{RefreshSeconds: 30, PreviewRows: 5, StatColumns: 1}
	data, err := fetchDashboardData(context.Background(), client, nil, api.TableAuto, cfg)
	if err != nil {
		t.Fatalf("fetch with nil cache error = %v", err)
	}
	if data.Metrics.TotalCases != 10 {
		t.Errorf("TotalCases = %d, want 10", data.Metrics.TotalCases)
	}
}
