// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/saluddata/covidctl/cmd/covidctl/config"
	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/cache"
	"github.com/saluddata/covidctl/pkg/logging"
	"github.com/saluddata/covidctl/pkg/settings"
	"github.com/saluddata/covidctl/pkg/ux"
)

// newAPIClient builds the backend client from the loaded configuration.
func newAPIClient() *api.Client {
	cfg := config.Global.Backend
	log := appLogger
	if log == nil {
		log = logging.Default()
	}
	return api.NewClient(cfg.BaseURL,
		api.WithPrefix(cfg.APIPrefix),
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		api.WithLogger(log),
	)
}

// fail prints a human-readable version of err and exits non-zero.
func fail(err error) {
	ux.Error(api.UserMessage(err))
	os.Exit(1)
}

// openDashboardCache opens the on-disk dashboard cache. A cache that
// fails to open is not fatal; callers get nil and every read misses.
func openDashboardCache() *cache.Cache {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	c, err := cache.Open(filepath.Join(home, ".covidctl", "cache"), appLogger)
	if err != nil {
		if appLogger != nil {
			appLogger.Warn("dashboard cache unavailable", "error", err)
		}
		return nil
	}
	return c
}

// openSettings returns the persisted UI settings store. Falls back to
// an in-tree temp path only if the home directory cannot be resolved.
func openSettings() *settings.Store {
	store, err := settings.DefaultStore()
	if err != nil {
		return settings.NewStore(filepath.Join(os.TempDir(), "covidctl-settings.yaml"))
	}
	return store
}
