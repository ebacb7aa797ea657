// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package settings stores durable user preferences.
//
// Preferences survive across covidctl invocations, like the monitor's
// auto-refresh toggle. They live in ~/.covidctl/settings.yaml as a
// typed document; there are no magic string keys at call sites.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted preference document.
type Settings struct {
	// MonitorAutoRefresh controls whether the process monitor polls
	// the backend automatically.
	MonitorAutoRefresh bool `yaml:"monitor_auto_refresh"`

	// MonitorLogLevel is the persisted log level filter ("" = all).
	MonitorLogLevel string `yaml:"monitor_log_level,omitempty"`

	// DashboardTableType is the last selected table type.
	DashboardTableType string `yaml:"dashboard_table_type,omitempty"`
}

// defaults returns the first-run settings. Auto-refresh starts enabled,
// matching the monitor's out-of-the-box behavior.
func defaults() Settings {
	return Settings{
		MonitorAutoRefresh: true,
		DashboardTableType: "auto",
	}
}

// Store reads and writes the settings file. Safe for concurrent use
// within one process; last writer wins across processes.
type Store struct {
	mu       sync.Mutex
	path     string
	settings Settings
	loaded   bool
}

// NewStore creates a Store at an explicit path. Used by tests.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore creates a Store at ~/.covidctl/settings.yaml.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	return NewStore(filepath.Join(home, ".covidctl", "settings.yaml")), nil
}

// load reads the file once, creating defaults when it does not exist.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.settings = defaults()
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	s.settings = defaults()
	if err := yaml.Unmarshal(data, &s.settings); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}
	s.loaded = true
	return nil
}

// save writes the current settings back to disk.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return Settings{}, err
	}
	return s.settings, nil
}

// MonitorAutoRefresh returns the persisted auto-refresh toggle,
// defaulting to true when the settings cannot be read.
func (s *Store) MonitorAutoRefresh() bool {
	got, err := s.Get()
	if err != nil {
		return true
	}
	return got.MonitorAutoRefresh
}

// SetMonitorAutoRefresh persists the auto-refresh toggle.
func (s *Store) SetMonitorAutoRefresh(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.settings.MonitorAutoRefresh = enabled
	return s.save()
}

// SetDashboardTableType persists the last table type selection.
func (s *Store) SetDashboardTableType(tableType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.settings.DashboardTableType = tableType
	return s.save()
}

// MonitorLogLevel returns the persisted log level filter, defaulting
// to unfiltered when the settings cannot be read.
func (s *Store) MonitorLogLevel() string {
	got, err := s.Get()
	if err != nil {
		return ""
	}
	return got.MonitorLogLevel
}

// SetMonitorLogLevel persists the monitor's log level filter.
func (s *Store) SetMonitorLogLevel(level string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.settings.MonitorLogLevel = level
	return s.save()
}
