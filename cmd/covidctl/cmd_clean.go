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
	"time"

	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
)

// cleanPollInterval is how often the run command re-checks job status.
const cleanPollInterval = 2 * time.Second

// runCleanRun submits an asynchronous cleaning job built from the
// flags and polls it to completion, printing progress along the way.
func runCleanRun(cmd *cobra.Command, args []string) {
	cfg := api.CleaningConfig{
		RemoveDuplicates:   !keepDuplicates,
		HandleMissing:      handleMissing,
		DetectOutliers:     !skipOutliers,
		StandardizeFormats: !skipFormats,
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	client := newAPIClient()
	job, err := client.RunCleaning(cmd.Context(), cfg)
	if err != nil {
		fail(err)
	}
	ux.Info(fmt.Sprintf("Cleaning job %s submitted", job.JobID))

	status, err := pollCleaning(cmd.Context(), client, job.JobID)
	if err != nil {
		fail(err)
	}
	if status.Status == api.StatusFailed {
		invalidateDashboardCache()
		fail(fmt.Errorf("cleaning job %s failed", job.JobID))
	}
	ux.Success("Cleaning completed")
	for k, v := range status.Results {
		fmt.Printf("  %s: %v\n", k, v)
	}
	invalidateDashboardCache()

	history, err := client.CleaningHistory(cmd.Context(), 5)
	if err != nil {
		ux.Warning("cleaning finished, but the history could not be refreshed: " + api.UserMessage(err))
		return
	}
	printCleaningHistory(history)
}

// pollCleaning re-reads job status every cleanPollInterval until the
// job reaches a terminal state or ctx is cancelled.
func pollCleaning(ctx context.Context, client *api.Client, jobID string) (*api.CleaningStatus, error) {
	ticker := time.NewTicker(cleanPollInterval)
	defer ticker.Stop()
	for {
		status, err := client.CleaningStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if !ux.Plain() {
			fmt.Printf("\r%s %d%%  ", ux.ProgressBar(status.Progress, 100, 30), status.Progress)
		}
		if status.Done() {
			if !ux.Plain() {
				fmt.Println()
			}
			return status, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// runCleanTable runs the synchronous single-pass cleaning of the most
// recent uploaded table.
func runCleanTable(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	spin := ux.NewSpinner("Cleaning the current table (this can take a while)...")
	spin.Start()
	result, err := client.CleanTable(cmd.Context())
	if err != nil {
		spin.StopWithError("Cleaning failed")
		fail(err)
	}
	spin.StopWithSuccess(result.Message)
	invalidateDashboardCache()

	s := result.Stats
	ux.PrintTable(
		[]any{"Metric", "Value"},
		[][]any{
			{"Original table", result.OriginalTable},
			{"Clean table", result.CleanTable},
			{"Rows before", s.OriginalRows},
			{"Rows after", s.CleanRows},
			{"Duplicates removed", s.DuplicatesRemoved},
			{"Nulls handled", s.NullsHandled},
			{"Outliers removed", s.OutliersRemoved},
			{"Quality score", fmt.Sprintf("%.1f%%", s.QualityScore)},
			{"Elapsed", fmt.Sprintf("%.1fs", result.ElapsedSeconds)},
		},
	)
}

// runCleanStatus shows one cleaning job.
func runCleanStatus(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	status, err := client.CleaningStatus(cmd.Context(), args[0])
	if err != nil {
		fail(err)
	}
	fmt.Printf("%s  %s  %d%%\n", status.JobID, ux.StatusBadge(status.Status), status.Progress)
	if status.CompletedAt != "" {
		ux.Muted("completed at " + status.CompletedAt)
	}
}

// runCleanCancel cancels a running cleaning job.
func runCleanCancel(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	if err := client.CancelCleaningJob(cmd.Context(), args[0]); err != nil {
		fail(err)
	}
	ux.Success("Job " + args[0] + " cancelled")
}

// runCleanStrategies lists the selectable missing-value strategies.
func runCleanStrategies(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	strategies, err := client.CleaningStrategies(cmd.Context())
	if err != nil {
		fail(err)
	}
	rows := make([][]any, 0, len(strategies))
	for _, s := range strategies {
		rows = append(rows, []any{s.Name, s.Description})
	}
	ux.PrintTable([]any{"Strategy", "Description"}, rows)
}

// runCleanHistory lists past cleaning runs, newest first.
func runCleanHistory(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	history, err := client.CleaningHistory(cmd.Context(), historyLimit)
	if err != nil {
		fail(err)
	}
	printCleaningHistory(history)
}

func printCleaningHistory(history []api.CleaningHistoryEntry) {
	if len(history) == 0 {
		ux.Muted("No cleaning runs yet.")
		return
	}
	rows := make([][]any, 0, len(history))
	for _, h := range history {
		rows = append(rows, []any{
			h.Timestamp, h.OriginalTable, h.CleanTable,
			h.RowsBefore, h.RowsAfter,
			fmt.Sprintf("%.1f%%", h.QualityScore),
			fmt.Sprintf("%.1fs", h.ElapsedSeconds),
		})
	}
	ux.PrintTable([]any{"When", "Original", "Clean", "Before", "After", "Quality", "Elapsed"}, rows)
}

// invalidateDashboardCache drops cached dashboard responses after any
// operation that rewrites tables, so the next dashboard view refetches.
func invalidateDashboardCache() {
	c := openDashboardCache()
	if c == nil {
		return
	}
	c.InvalidateDashboard()
	c.Close()
}
