// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "covidctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom_FillsDefaults(t *testing.T) {
	path := writeConfig(t, "backend:\n  base_url: http://pipeline.internal:8000\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "http://pipeline.internal:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "/api", cfg.Backend.APIPrefix)
	assert.Equal(t, 300, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Dashboard.RefreshSeconds)
	assert.Equal(t, 5, cfg.Monitor.PollSeconds)
}

func TestLoadFrom_EnvOverridesBaseURL(t *testing.T) {
	path := writeConfig(t, "backend:\n  base_url: http://localhost:8000\n")
	t.Setenv(EnvBackendURL, "http://override:9000")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000", cfg.Backend.BaseURL)
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad url", "backend:\n  base_url: not-a-url\n"},
		{"timeout too large", "backend:\n  base_url: http://localhost:8000\n  timeout_seconds: 99999\n"},
		{"bad log level", "backend:\n  base_url: http://localhost:8000\nlogging:\n  level: loud\n"},
		{"refresh too fast", "backend:\n  base_url: http://localhost:8000\ndashboard:\n  refresh_seconds: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, Validate(&cfg))
}
