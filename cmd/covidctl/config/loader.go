// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the covidctl configuration file.
//
// The file lives at ~/.covidctl/covidctl.yaml and is created with
// defaults on first run. The COVIDCTL_BACKEND_URL environment variable
// overrides the backend base URL, which tests and container setups use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// Global is the loaded singleton.
	Global CovidctlConfig
	once   sync.Once
)

// EnvBackendURL overrides backend.base_url when set.
const EnvBackendURL = "COVIDCTL_BACKEND_URL"

// Load ensures the config is loaded into Global. Safe to call from
// every command; the file is read once.
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find the user's home directory: %w", err)
	}
	configPath := filepath.Join(home, ".covidctl", "covidctl.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return err
		}
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return err
	}
	Global = *cfg
	return nil
}

// LoadFrom reads, fills defaults for, and validates one config file.
func LoadFrom(path string) (*CovidctlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config file: %w", err)
	}
	if url := os.Getenv(EnvBackendURL); url != "" {
		cfg.Backend.BaseURL = url
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural constraints on a config.
func Validate(cfg *CovidctlConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
