// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
)

func runStorageStatus(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	status, err := client.StorageStatus(cmd.Context())
	if err != nil {
		fail(err)
	}
	check := func(ok bool) string {
		if ok {
			return "yes"
		}
		return "no"
	}
	ux.PrintTable(
		[]any{"Field", "Value"},
		[][]any{
			{"Storage ID", status.StorageID},
			{"Location", status.Location},
			{"Size", fmt.Sprintf("%.1f MB", status.SizeMB)},
			{"Integrity OK", check(status.IntegrityCheck)},
			{"Backup exists", check(status.BackupExists)},
		},
	)
}

func runStorageInit(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	spin := ux.NewSpinner("Initializing Delta Lake structures...")
	spin.Start()
	msg, err := client.InitializeStorage(cmd.Context())
	if err != nil {
		spin.StopWithError("Initialization failed")
		fail(err)
	}
	spin.StopWithSuccess(msg)
}

func runStorageTest(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	spin := ux.NewSpinner("Testing warehouse connection...")
	spin.Start()
	msg, err := client.TestStorageConnection(cmd.Context())
	if err != nil {
		spin.StopWithError("Connection test failed")
		fail(err)
	}
	spin.StopWithSuccess(msg)
}

func runStorageInfo(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	info, err := client.TableInfo(cmd.Context(), args[0])
	if err != nil {
		fail(err)
	}
	ux.PrintTable(
		[]any{"Field", "Value"},
		[][]any{
			{"Table", info.TableName},
			{"Rows", info.RowCount},
			{"Size", fmt.Sprintf("%.1f MB", info.SizeMB)},
			{"Created", info.CreatedAt},
		},
	)
}

func runStorageStats(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	stats, err := client.StorageStatistics(cmd.Context())
	if err != nil {
		fail(err)
	}
	ux.PrintTable(
		[]any{"Metric", "Value"},
		[][]any{
			{"Tables", stats.TotalTables},
			{"Total rows", stats.TotalRows},
			{"Total size", fmt.Sprintf("%.1f MB", stats.TotalSizeMB)},
		},
	)
}

// runStorageDrop deletes a table permanently. Requires --force so a
// mistyped command cannot destroy data.
func runStorageDrop(cmd *cobra.Command, args []string) {
	if !forceFlag {
		fail(fmt.Errorf("dropping %s is permanent; rerun with --force", args[0]))
	}
	client := newAPIClient()
	if err := client.DropTable(cmd.Context(), args[0]); err != nil {
		fail(err)
	}
	ux.Success("Table " + args[0] + " dropped")
	invalidateDashboardCache()
}
