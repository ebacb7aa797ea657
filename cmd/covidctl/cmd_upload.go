// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
)

// runUploadFile validates and uploads a single data file, then shows
// the refreshed upload history so the new record is visible.
func runUploadFile(cmd *cobra.Command, args []string) {
	path := args[0]
	client := newAPIClient()

	result, err := uploadOne(cmd.Context(), client, path)
	if err != nil {
		fail(err)
	}
	ux.Success(result.Message)
	fmt.Printf("  ingestion: %s\n  records:   %d\n", result.IngestionID, result.RecordsCount)

	history, err := client.UploadHistory(cmd.Context())
	if err != nil {
		// The upload itself succeeded; a history failure only costs
		// the confirmation listing.
		ux.Warning("upload stored, but the history could not be refreshed: " + api.UserMessage(err))
		return
	}
	printUploadHistory(history)
}

// uploadOne stats, validates, and streams one file to the backend.
// Validation failures never reach the network.
func uploadOne(ctx context.Context, client *api.Client, path string) (*api.UploadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateUploadFile(info.Name(), info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	spin := ux.NewSpinner(fmt.Sprintf("Uploading %s (%d KB)...", info.Name(), info.Size()/1024))
	spin.Start()
	result, err := client.Upload(ctx, info.Name(), f, info.Size())
	if err != nil {
		spin.StopWithError("Upload failed")
		return nil, err
	}
	spin.StopWithSuccess("Upload complete")
	return result, nil
}

// runUploadWatch uploads every data file that appears in a directory.
// Useful when an export job drops daily case files into a folder.
func runUploadWatch(cmd *cobra.Command, args []string) {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		fail(err)
	}
	if !info.IsDir() {
		fail(fmt.Errorf("%s is not a directory", dir))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fail(err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		fail(err)
	}

	client := newAPIClient()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ux.Info(fmt.Sprintf("Watching %s for new data files (ctrl-c to stop)", dir))
	for {
		select {
		case <-ctx.Done():
			ux.Info("Watch stopped")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			ext := strings.ToLower(filepath.Ext(event.Name))
			if !api.AllowedUploadExtensions[ext] {
				continue
			}
			// Give the writer a moment to finish the file before we
			// stat and stream it.
			time.Sleep(500 * time.Millisecond)
			result, err := uploadOne(ctx, client, event.Name)
			if err != nil {
				ux.Error(fmt.Sprintf("%s: %s", filepath.Base(event.Name), api.UserMessage(err)))
				continue
			}
			ux.Success(fmt.Sprintf("%s: %s (%d records)",
				filepath.Base(event.Name), result.Message, result.RecordsCount))
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			appLogger.Warn("watcher error", "error", werr)
		}
	}
}

// runUploadHistory lists past uploads.
func runUploadHistory(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	history, err := client.UploadHistory(cmd.Context())
	if err != nil {
		fail(err)
	}
	printUploadHistory(history)
}

// runUploadSources lists the registered ingestion sources.
func runUploadSources(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	sources, err := client.DataSources(cmd.Context())
	if err != nil {
		fail(err)
	}
	if len(sources) == 0 {
		ux.Muted("No data sources registered.")
		return
	}
	rows := make([][]any, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []any{s.SourceID, s.Name, s.Type, s.LastUpdated})
	}
	ux.PrintTable([]any{"ID", "Name", "Type", "Updated"}, rows)
}

// runUploadDelete removes one upload record. Requires --force.
func runUploadDelete(cmd *cobra.Command, args []string) {
	if !forceFlag {
		fail(fmt.Errorf("deleting upload %s is permanent; rerun with --force", args[0]))
	}
	client := newAPIClient()
	if err := client.DeleteUpload(cmd.Context(), args[0]); err != nil {
		fail(err)
	}
	ux.Success("Upload " + args[0] + " deleted")
}

func printUploadHistory(history *api.UploadHistory) {
	if history.Total == 0 {
		ux.Muted("No uploads yet.")
		return
	}
	ux.Title(fmt.Sprintf("Uploads (%d)", history.Total))
	rows := make([][]any, 0, len(history.Uploads))
	for _, u := range history.Uploads {
		rows = append(rows, []any{
			u.IngestionID, u.Filename, u.RecordsCount,
			fmt.Sprintf("%d KB", u.SizeBytes/1024),
			ux.StatusBadge(u.Status), u.UploadedAt,
		})
	}
	ux.PrintTable([]any{"ID", "File", "Records", "Size", "Status", "Uploaded"}, rows)
}
