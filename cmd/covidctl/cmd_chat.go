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
	"strings"
	"syscall"

	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
)

// runChatCommand starts the interactive question-and-answer session.
func runChatCommand(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	ui := ux.NewChatUI()
	ui.Header(client.BaseURL())

	runner := NewChatRunner(&apiQueryService{client: client}, ui, newStdinReader(os.Stdin))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runner.Run(ctx); err != nil && err != context.Canceled {
		fail(err)
	}
}

// runAskCommand asks one question and prints the answer. The question
// is all the positional args joined, so quoting is optional.
func runAskCommand(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	if err := api.ValidateQuestion(question); err != nil {
		fail(err)
	}

	client := newAPIClient()
	spin := ux.NewSpinner("Consultando...")
	spin.Start()
	answer, err := client.Query(cmd.Context(), question)
	if err != nil {
		spin.StopWithError("Query failed")
		fail(err)
	}
	spin.Stop()

	ux.NewChatUI().Response(answer.Answer, ux.QueryDiagnostics{
		SQLQuery:      answer.SQLQuery,
		TableUsed:     answer.TableUsed,
		ExecutionTime: answer.ExecutionTime,
		Sources:       answer.Sources,
		Preview:       answer.DataPreview,
	})
}

// runQueriesList lists recent natural-language queries.
func runQueriesList(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	history, err := client.QueryHistory(cmd.Context(), historyLimit)
	if err != nil {
		fail(err)
	}
	if len(history) == 0 {
		ux.Muted("No queries yet.")
		return
	}
	rows := make([][]any, 0, len(history))
	for _, h := range history {
		rows = append(rows, []any{h.Timestamp, h.Question, truncate(h.Answer, 60)})
	}
	ux.PrintTable([]any{"When", "Question", "Answer"}, rows)
}

// runQueriesStats shows aggregate query statistics.
func runQueriesStats(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	stats, err := client.RAGStats(cmd.Context())
	if err != nil {
		fail(err)
	}
	ux.PrintTable(
		[]any{"Metric", "Value"},
		[][]any{
			{"Total queries", stats.TotalQueries},
			{"Avg response time", fmt.Sprintf("%.2fs", stats.AvgResponseTime)},
			{"Helpful rate", fmt.Sprintf("%.0f%%", 100*stats.HelpfulRate)},
		},
	)
}

// runQueriesClear deletes the stored query history. Requires --force.
func runQueriesClear(cmd *cobra.Command, args []string) {
	if !forceFlag {
		fail(fmt.Errorf("clearing the query history is permanent; rerun with --force"))
	}
	client := newAPIClient()
	if err := client.ClearQueryHistory(cmd.Context()); err != nil {
		fail(err)
	}
	ux.Success("Query history cleared")
}

// runQueriesFeedback marks a past answer helpful or not.
func runQueriesFeedback(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	helpful := !notHelpful
	if err := client.SubmitFeedback(cmd.Context(), args[0], helpful); err != nil {
		fail(err)
	}
	if helpful {
		ux.Success("Marked as helpful")
	} else {
		ux.Success("Marked as not helpful")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
