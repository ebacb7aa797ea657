// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

// CovidctlConfig is the document stored at ~/.covidctl/covidctl.yaml.
type CovidctlConfig struct {
	// Backend locates the pipeline REST service.
	Backend BackendConfig `yaml:"backend"`

	// Logging configures the CLI's structured logs.
	Logging LoggingConfig `yaml:"logging"`

	// Dashboard tunes the interactive dashboard view.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Monitor tunes the process monitor view.
	Monitor MonitorConfig `yaml:"monitor"`
}

// BackendConfig locates the pipeline backend.
type BackendConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// APIPrefix is the path prefix every endpoint is mounted under.
	// The backend uses "/api"; this exists so a reverse proxy that
	// strips the prefix can still be used.
	APIPrefix string `yaml:"api_prefix"`

	// TimeoutSeconds is the per-request timeout. Cleaning and
	// classification are synchronous on the backend, so this is long.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"gte=1,lte=3600"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Dir enables file logging when set, e.g. "~/.covidctl/logs".
	Dir string `yaml:"dir"`
}

// DashboardConfig tunes the dashboard view.
type DashboardConfig struct {
	// RefreshSeconds is the auto-refresh interval.
	RefreshSeconds int `yaml:"refresh_seconds" validate:"gte=5,lte=3600"`

	// PreviewRows bounds the data preview fetch.
	PreviewRows int `yaml:"preview_rows" validate:"gte=1,lte=100"`

	// StatColumns bounds how many columns get per-column stats.
	StatColumns int `yaml:"stat_columns" validate:"gte=1,lte=10"`
}

// MonitorConfig tunes the process monitor view.
type MonitorConfig struct {
	// PollSeconds is the status/log polling interval.
	PollSeconds int `yaml:"poll_seconds" validate:"gte=1,lte=600"`

	// LogLimit bounds the log fetch.
	LogLimit int `yaml:"log_limit" validate:"gte=1,lte=500"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() CovidctlConfig {
	return CovidctlConfig{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			APIPrefix:      "/api",
			TimeoutSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Dashboard: DashboardConfig{
			RefreshSeconds: 30,
			PreviewRows:    10,
			StatColumns:    3,
		},
		Monitor: MonitorConfig{
			PollSeconds: 5,
			LogLimit:    50,
		},
	}
}
