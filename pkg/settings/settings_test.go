// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package settings

import (
	"path/filepath"
	"testing"
)

func TestStore_DefaultsWhenMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.yaml"))

	got, err := store.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.MonitorAutoRefresh {
		t.Error("MonitorAutoRefresh default = false, want true")
	}
	if got.DashboardTableType != "auto" {
		t.Errorf("DashboardTableType default = %q, want auto", got.DashboardTableType)
	}
}

func TestStore_TogglePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	store := NewStore(path)
	if err := store.SetMonitorAutoRefresh(false); err != nil {
		t.Fatalf("SetMonitorAutoRefresh: %v", err)
	}

	// New Store simulates a new covidctl invocation.
	reopened := NewStore(path)
	if reopened.MonitorAutoRefresh() {
		t.Error("toggle did not persist across store instances")
	}
}

func TestStore_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := NewStore(path)
	if err := store.SetDashboardTableType("classified"); err != nil {
		t.Fatalf("SetDashboardTableType: %v", err)
	}

	reopened := NewStore(path)
	got, err := reopened.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DashboardTableType != "classified" {
		t.Errorf("DashboardTableType = %q", got.DashboardTableType)
	}
	// Field not present in the file keeps its default.
	if !got.MonitorAutoRefresh {
		t.Error("MonitorAutoRefresh lost its default after partial write")
	}
}

func TestStore_SetMonitorLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := NewStore(path)
	if err := store.SetMonitorLogLevel("ERROR"); err != nil {
		t.Fatalf("SetMonitorLogLevel: %v", err)
	}

	got, err := NewStore(path).Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MonitorLogLevel != "ERROR" {
		t.Errorf("MonitorLogLevel = %q", got.MonitorLogLevel)
	}
	if level := NewStore(path).MonitorLogLevel(); level != "ERROR" {
		t.Errorf("MonitorLogLevel() = %q, want ERROR", level)
	}
}
