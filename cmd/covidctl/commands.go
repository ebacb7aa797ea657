// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	backendURL     string
	plainOutput    bool
	logLevel       string
	historyLimit   int
	handleMissing  string
	keepDuplicates bool
	skipOutliers   bool
	skipFormats    bool
	applyAll       bool
	runAnother     bool
	tableTypeFlag  string
	runOnce        bool
	forceFlag      bool
	notHelpful     bool
	daysFlag       int
	samplesLimit   int

	rootCmd = &cobra.Command{
		Use:   "covidctl",
		Short: "A cli to operate the COVID-19 data pipeline",
		Long: `covidctl is the terminal front end for the COVID-19 data pipeline:
				upload raw case files, trigger cleaning and classification runs,
				ask questions in natural language, and watch pipeline health.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if plainOutput {
				ux.SetPlain(true)
			}
		},
	}

	// --- Ingestion ---
	uploadCmd = &cobra.Command{
		Use:   "upload",
		Short: "Upload raw COVID-19 case files to the pipeline",
	}
	uploadFileCmd = &cobra.Command{
		Use:   "file [path]",
		Short: "Upload a single data file (csv, xlsx, xls, or json, max 500MB)",
		Args:  cobra.ExactArgs(1),
		Run:   runUploadFile, // Defined in cmd_upload.go
	}
	uploadWatchCmd = &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a directory and upload every new data file dropped into it",
		Args:  cobra.ExactArgs(1),
		Run:   runUploadWatch, // Defined in cmd_upload.go
	}
	uploadHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "List past uploads",
		Run:   runUploadHistory, // Defined in cmd_upload.go
	}
	uploadSourcesCmd = &cobra.Command{
		Use:   "sources",
		Short: "List the registered ingestion sources",
		Run:   runUploadSources, // Defined in cmd_upload.go
	}
	uploadDeleteCmd = &cobra.Command{
		Use:   "delete [ingestion_id]",
		Short: "Delete one upload record from the backend",
		Args:  cobra.ExactArgs(1),
		Run:   runUploadDelete, // Defined in cmd_upload.go
	}

	// --- Cleaning ---
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Run and inspect data cleaning jobs",
	}
	cleanRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Submit a cleaning job and poll it until it finishes",
		Run:   runCleanRun, // Defined in cmd_clean.go
	}
	cleanTableCmd = &cobra.Command{
		Use:   "table",
		Short: "Clean the most recent uploaded table in one synchronous pass",
		Run:   runCleanTable, // Defined in cmd_clean.go
	}
	cleanStatusCmd = &cobra.Command{
		Use:   "status [job_id]",
		Short: "Show the status of one cleaning job",
		Args:  cobra.ExactArgs(1),
		Run:   runCleanStatus, // Defined in cmd_clean.go
	}
	cleanCancelCmd = &cobra.Command{
		Use:   "cancel [job_id]",
		Short: "Cancel a running cleaning job",
		Args:  cobra.ExactArgs(1),
		Run:   runCleanCancel, // Defined in cmd_clean.go
	}
	cleanStrategiesCmd = &cobra.Command{
		Use:   "strategies",
		Short: "List the missing-value strategies the backend supports",
		Run:   runCleanStrategies, // Defined in cmd_clean.go
	}
	cleanHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "List past cleaning runs",
		Run:   runCleanHistory, // Defined in cmd_clean.go
	}

	// --- Classification ---
	classifyCmd = &cobra.Command{
		Use:   "classify",
		Short: "Derive categorical columns from the clean table",
	}
	classifyRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Analyze the table, pick classifications, and apply them",
		Run:   runClassifyRun, // Defined in cmd_classify.go
	}
	classifyHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "List past classification runs",
		Run:   runClassifyHistory, // Defined in cmd_classify.go
	}
	classifyMetricsCmd = &cobra.Command{
		Use:   "metrics",
		Short: "Show the classifier's model metrics",
		Run:   runClassifyMetrics, // Defined in cmd_classify.go
	}
	classifyDistributionCmd = &cobra.Command{
		Use:   "distribution",
		Short: "Show case counts per severity class",
		Run:   runClassifyDistribution, // Defined in cmd_classify.go
	}
	classifySamplesCmd = &cobra.Command{
		Use:   "samples",
		Short: "Show a sample of classified cases",
		Run:   runClassifySamples, // Defined in cmd_classify.go
	}

	// --- Chat / RAG ---
	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question-and-answer session",
		Run:   runChatCommand, // Defined in cmd_chat.go
	}
	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the pipeline one question in natural language",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAskCommand, // Defined in cmd_chat.go
	}
	queriesCmd = &cobra.Command{
		Use:   "queries",
		Short: "Inspect the natural-language query history",
	}
	queriesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List recent queries",
		Run:   runQueriesList, // Defined in cmd_chat.go
	}
	queriesStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate query statistics",
		Run:   runQueriesStats, // Defined in cmd_chat.go
	}
	queriesClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored query history",
		Run:   runQueriesClear, // Defined in cmd_chat.go
	}
	queriesFeedbackCmd = &cobra.Command{
		Use:   "feedback [query_id]",
		Short: "Record whether an answer was helpful",
		Args:  cobra.ExactArgs(1),
		Run:   runQueriesFeedback, // Defined in cmd_chat.go
	}

	// --- Dashboard ---
	dashboardCmd = &cobra.Command{
		Use:   "dashboard",
		Short: "Show pipeline metrics, schema, and data preview",
		Run:   runDashboard, // Defined in cmd_dashboard.go
	}
	dashboardTimeseriesCmd = &cobra.Command{
		Use:   "timeseries",
		Short: "Show per-day case, death, and vaccination counts",
		Run:   runDashboardTimeseries, // Defined in cmd_dashboard.go
	}
	dashboardTablesCmd = &cobra.Command{
		Use:   "tables",
		Short: "List the tables the dashboard can visualize",
		Run:   runDashboardTables, // Defined in cmd_dashboard.go
	}
	dashboardGeoCmd = &cobra.Command{
		Use:   "geo",
		Short: "Show per-region case and death counts",
		Run:   runDashboardGeo, // Defined in cmd_dashboard.go
	}
	dashboardAgesCmd = &cobra.Command{
		Use:   "ages",
		Short: "Show the case distribution by age group",
		Run:   runDashboardAges, // Defined in cmd_dashboard.go
	}
	dashboardVaccinationCmd = &cobra.Command{
		Use:   "vaccination",
		Short: "Show the vaccinated versus unvaccinated breakdown",
		Run:   runDashboardVaccination, // Defined in cmd_dashboard.go
	}
	dashboardKPIsCmd = &cobra.Command{
		Use:   "kpis",
		Short: "Show the headline indicators",
		Run:   runDashboardKPIs, // Defined in cmd_dashboard.go
	}

	// --- Monitor ---
	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Watch pipeline process status and logs",
		Run:   runMonitor, // Defined in cmd_monitor.go
	}
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Show backend component health",
		Run:   runHealth, // Defined in cmd_monitor.go
	}

	// --- Storage ---
	storageCmd = &cobra.Command{
		Use:   "storage",
		Short: "Administer the Delta Lake storage layer",
	}
	storageStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show storage layer status",
		Run:   runStorageStatus, // Defined in cmd_storage.go
	}
	storageInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize the Delta Lake structures",
		Run:   runStorageInit, // Defined in cmd_storage.go
	}
	storageTestCmd = &cobra.Command{
		Use:   "test",
		Short: "Test the backend's warehouse connection",
		Run:   runStorageTest, // Defined in cmd_storage.go
	}
	storageInfoCmd = &cobra.Command{
		Use:   "info [table]",
		Short: "Show details of one stored table",
		Args:  cobra.ExactArgs(1),
		Run:   runStorageInfo, // Defined in cmd_storage.go
	}
	storageStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate storage usage",
		Run:   runStorageStats, // Defined in cmd_storage.go
	}
	storageDropCmd = &cobra.Command{
		Use:   "drop [table]",
		Short: "DANGER: permanently delete a stored table",
		Args:  cobra.ExactArgs(1),
		Run:   runStorageDrop, // Defined in cmd_storage.go
	}
)

// init wires the command tree and flags.
func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "",
		"Backend base URL (overrides config and COVIDCTL_BACKEND_URL)")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"Plain output: no colors, no spinners (for scripting)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, or error")

	// ingestion
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.AddCommand(uploadFileCmd)
	uploadCmd.AddCommand(uploadWatchCmd)
	uploadCmd.AddCommand(uploadHistoryCmd)
	uploadCmd.AddCommand(uploadSourcesCmd)
	uploadCmd.AddCommand(uploadDeleteCmd)
	uploadDeleteCmd.Flags().BoolVar(&forceFlag, "force", false,
		"Required to confirm the deletion of the record")

	// cleaning
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.AddCommand(cleanRunCmd)
	cleanCmd.AddCommand(cleanTableCmd)
	cleanCmd.AddCommand(cleanStatusCmd)
	cleanCmd.AddCommand(cleanCancelCmd)
	cleanCmd.AddCommand(cleanStrategiesCmd)
	cleanCmd.AddCommand(cleanHistoryCmd)
	cleanRunCmd.Flags().BoolVar(&keepDuplicates, "keep-duplicates", false,
		"Skip the duplicate-removal pass")
	cleanRunCmd.Flags().StringVar(&handleMissing, "handle-missing", "drop",
		"Missing-value strategy: drop, fill_mean, fill_median, or fill_zero")
	cleanRunCmd.Flags().BoolVar(&skipOutliers, "skip-outliers", false,
		"Skip the outlier-detection pass")
	cleanRunCmd.Flags().BoolVar(&skipFormats, "skip-formats", false,
		"Skip the format-standardization pass")
	cleanHistoryCmd.Flags().IntVar(&historyLimit, "limit", 5, "Maximum runs to list")

	// classification
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.AddCommand(classifyRunCmd)
	classifyCmd.AddCommand(classifyHistoryCmd)
	classifyCmd.AddCommand(classifyMetricsCmd)
	classifyCmd.AddCommand(classifyDistributionCmd)
	classifyCmd.AddCommand(classifySamplesCmd)
	classifySamplesCmd.Flags().IntVar(&samplesLimit, "limit", 10, "Maximum samples to show")
	classifyRunCmd.Flags().BoolVar(&applyAll, "all", false,
		"Apply every suggested classification without the interactive picker")
	classifyRunCmd.Flags().BoolVar(&runAnother, "another", false,
		"After a run, restart from the analysis for another pass")
	classifyHistoryCmd.Flags().IntVar(&historyLimit, "limit", 5, "Maximum runs to list")

	// chat
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(queriesCmd)
	queriesCmd.AddCommand(queriesListCmd)
	queriesCmd.AddCommand(queriesStatsCmd)
	queriesCmd.AddCommand(queriesClearCmd)
	queriesCmd.AddCommand(queriesFeedbackCmd)
	queriesListCmd.Flags().IntVar(&historyLimit, "limit", 5, "Maximum queries to list")
	queriesClearCmd.Flags().BoolVar(&forceFlag, "force", false, "Required to confirm deletion")
	queriesFeedbackCmd.Flags().BoolVar(&notHelpful, "not-helpful", false,
		"Mark the answer as not helpful (default marks it helpful)")

	// dashboard
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardTimeseriesCmd)
	dashboardCmd.AddCommand(dashboardTablesCmd)
	dashboardCmd.AddCommand(dashboardGeoCmd)
	dashboardCmd.AddCommand(dashboardAgesCmd)
	dashboardCmd.AddCommand(dashboardVaccinationCmd)
	dashboardCmd.AddCommand(dashboardKPIsCmd)
	dashboardCmd.Flags().StringVar(&tableTypeFlag, "table-type", "auto",
		"Table stage to visualize: auto, original, clean, or classified")
	dashboardCmd.Flags().BoolVar(&runOnce, "once", false,
		"Print one snapshot and exit instead of the interactive view")
	dashboardTimeseriesCmd.Flags().IntVar(&daysFlag, "days", 30, "Days of history to fetch")

	// monitor
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(healthCmd)
	monitorCmd.Flags().BoolVar(&runOnce, "once", false,
		"Print one snapshot and exit instead of the interactive view")

	// storage
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageStatusCmd)
	storageCmd.AddCommand(storageInitCmd)
	storageCmd.AddCommand(storageTestCmd)
	storageCmd.AddCommand(storageInfoCmd)
	storageCmd.AddCommand(storageStatsCmd)
	storageCmd.AddCommand(storageDropCmd)
	storageDropCmd.Flags().BoolVar(&forceFlag, "force", false,
		"Required to confirm the permanent deletion of the table")
}
