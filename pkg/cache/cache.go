// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache provides a read-through response cache for dashboard
// fetches, backed by badger.
//
// The invalidation rule is explicit: dashboard entries expire after a
// short TTL and are dropped wholesale whenever a cleaning or
// classification run succeeds, since either produces a new derived
// table that every dashboard fetch should see.
//
// The cache is best-effort. A nil *Cache is valid and misses on every
// lookup, so callers degrade to direct fetches when badger cannot be
// opened.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/saluddata/covidctl/pkg/logging"
)

// DefaultTTL matches the dashboard's 30 second auto-refresh cadence.
const DefaultTTL = 30 * time.Second

// dashboardPrefix namespaces every dashboard entry for bulk drops.
const dashboardPrefix = "dashboard/"

// Cache is a badger-backed key-value cache of JSON-encoded responses.
type Cache struct {
	db  *badger.DB
	log *logging.Logger
}

// Open opens (or creates) the cache at dir.
func Open(dir string, log *logging.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache at %s: %w", dir, err)
	}
	return &Cache{db: db, log: log}, nil
}

// OpenInMemory opens an ephemeral cache. Used by tests.
func OpenInMemory(log *logging.Logger) (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory cache: %w", err)
	}
	return &Cache{db: db, log: log}, nil
}

// DashboardKey builds the cache key for one dashboard resource.
func DashboardKey(tableType, resource string) string {
	return dashboardPrefix + tableType + "/" + resource
}

// Get decodes the cached value for key into out. Returns false on a
// miss, an expired entry, or any decode failure. Nil-safe.
func (c *Cache) Get(key string, out any) bool {
	if c == nil || c.db == nil {
		return false
	}
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	return err == nil
}

// Set stores a JSON encoding of v under key with the given TTL.
// Failures are logged and swallowed; the cache never fails a fetch.
func (c *Cache) Set(key string, v any, ttl time.Duration) {
	if c == nil || c.db == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil && c.log != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// InvalidateDashboard drops every dashboard entry. Called after a
// successful cleaning or classification run.
func (c *Cache) InvalidateDashboard() {
	if c == nil || c.db == nil {
		return
	}
	if err := c.db.DropPrefix([]byte(dashboardPrefix)); err != nil && c.log != nil {
		c.log.Warn("cache invalidation failed", "error", err)
	}
}

// Close releases the underlying badger database. Nil-safe.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
