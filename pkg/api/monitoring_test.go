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
	"testing"
)

func TestProcessList_CountByStatus(t *testing.T) {
	list := &ProcessList{Processes: []ProcessInfo{
		{Name: "Ingesta de Datos", Status: StatusCompleted},
		{Name: "Limpieza de Datos", Status: StatusRunning},
		{Name: "Clasificación", Status: StatusPending},
		{Name: "Almacenamiento", Status: StatusCompleted},
		{Name: "RAG", Status: StatusFailed},
	}}

	counts := list.CountByStatus()
	want := map[string]int{
		StatusCompleted: 2,
		StatusRunning:   1,
		StatusPending:   1,
		StatusFailed:    1,
	}
	for status, n := range want {
		if counts[status] != n {
			t.Errorf("counts[%s] = %d, want %d", status, counts[status], n)
		}
	}
}

func TestLogs_LevelFilter(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"logs": [
			{"timestamp": "2026-08-29 10:00", "process": "Limpieza_Datos", "level": "ERROR", "message": "fallo"}
		]}`))
	}))

	logs, err := client.Logs(context.Background(), 50, "ERROR")
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if gotQuery != "limit=50&level=ERROR" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(logs) != 1 || logs[0].Level != "ERROR" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestLogs_NoLevelOmitsParam(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"logs": []}`))
	}))

	if _, err := client.Logs(context.Background(), 100, ""); err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if gotQuery != "limit=100" {
		t.Errorf("query = %q, want limit=100", gotQuery)
	}
}

func TestProcesses_Snapshot(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"processes": [
			{"name": "Ingesta de Datos", "description": "Archivo: covid_data", "status": "completed", "last_run": "2026-08-29 09:30", "duration": "4.2s", "progress": 100}
		]}`))
	}))

	list, err := client.Processes(context.Background())
	if err != nil {
		t.Fatalf("Processes: %v", err)
	}
	if len(list.Processes) != 1 {
		t.Fatalf("len = %d", len(list.Processes))
	}
	p := list.Processes[0]
	if p.Status != StatusCompleted || p.Progress != 100 {
		t.Errorf("process = %+v", p)
	}
}
