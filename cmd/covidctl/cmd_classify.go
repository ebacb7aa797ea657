// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
)

// selectionSet tracks which column/rule pairs the user has picked.
// Keys are "column|rule".
type selectionSet map[string]api.ClassificationRule

func selectionKey(column, rule string) string {
	return column + "|" + rule
}

// SelectAll seeds the set with every suggested pair of the analysis.
func (s selectionSet) SelectAll(analysis *api.TableAnalysis) {
	for _, col := range analysis.ClassifiableColumns {
		for _, rule := range col.SuggestedRules {
			s[selectionKey(col.Column, rule)] = api.ClassificationRule{Column: col.Column, Rule: rule}
		}
	}
}

// Toggle flips one pair in or out of the selection.
func (s selectionSet) Toggle(column, rule string) {
	key := selectionKey(column, rule)
	if _, ok := s[key]; ok {
		delete(s, key)
		return
	}
	s[key] = api.ClassificationRule{Column: column, Rule: rule}
}

// Rules returns the selection in a stable order for submission.
func (s selectionSet) Rules() []api.ClassificationRule {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rules := make([]api.ClassificationRule, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, s[k])
	}
	return rules
}

// runClassifyRun walks the three-step flow: analyze the table, pick
// which suggested classifications to apply, then execute them. With
// --another the flow restarts from the analysis, selections discarded.
func runClassifyRun(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	for {
		applied := classifyOnce(cmd, client)
		// --another only makes sense with the interactive picker; the
		// picker's ctrl-c is the way out of the loop.
		if !applied || !runAnother || applyAll {
			return
		}
		fmt.Println()
	}
}

// classifyOnce runs one analyze/pick/execute pass. Returns false when
// there was nothing to classify.
func classifyOnce(cmd *cobra.Command, client *api.Client) bool {
	spin := ux.NewSpinner("Analyzing table columns...")
	spin.Start()
	analysis, err := client.AnalyzeTable(cmd.Context())
	if err != nil {
		spin.StopWithError("Analysis failed")
		fail(err)
	}
	spin.StopWithSuccess(fmt.Sprintf("Found %d classifiable columns in %s",
		analysis.TotalClassifiable, analysis.TableName))

	if len(analysis.ClassifiableColumns) == 0 {
		ux.Muted("Nothing to classify. Upload and clean a table first.")
		return false
	}

	var rules []api.ClassificationRule
	if applyAll {
		selection := selectionSet{}
		selection.SelectAll(analysis)
		rules = selection.Rules()
	} else {
		var perr error
		rules, perr = chooseRules(analysis, func(s selectionSet) error {
			return pickClassifications(analysis, s)
		})
		if perr != nil {
			fail(perr)
		}
	}

	spin = ux.NewSpinner(fmt.Sprintf("Applying %d classifications...", len(rules)))
	spin.Start()
	result, err := client.ExecuteClassification(cmd.Context(), analysis.TableName, rules)
	if err != nil {
		spin.StopWithError("Classification failed")
		fail(err)
	}
	spin.StopWithSuccess(result.Message)
	invalidateDashboardCache()

	fmt.Printf("  table:    %s\n  applied:  %d\n  records:  %d\n  elapsed:  %.1fs\n",
		result.ClassifiedTable, result.ClassificationsApplied,
		result.TotalRecords, result.ElapsedSeconds)

	history, err := client.ClassificationHistory(cmd.Context(), 5)
	if err != nil {
		ux.Warning("classification finished, but the history could not be refreshed: " + api.UserMessage(err))
		return true
	}
	printClassificationHistory(history)
	return true
}

// chooseRules runs the picker until at least one pair is selected.
// Deselecting everything re-shows the form with a reminder instead of
// aborting the run.
func chooseRules(analysis *api.TableAnalysis, pick func(selectionSet) error) ([]api.ClassificationRule, error) {
	selection := selectionSet{}
	for {
		selection.SelectAll(analysis)
		if err := pick(selection); err != nil {
			return nil, err
		}
		if rules := selection.Rules(); len(rules) > 0 {
			return rules, nil
		}
		ux.Warning("select at least one classification to apply")
	}
}

// pickClassifications shows the interactive multi-select. Every
// suggested pair starts selected; the user deselects what they do not
// want. The chosen values replace the seeded selection.
func pickClassifications(analysis *api.TableAnalysis, selection selectionSet) error {
	options := make([]huh.Option[string], 0)
	preselected := make([]string, 0)
	for _, col := range analysis.ClassifiableColumns {
		for _, rule := range col.SuggestedRules {
			key := selectionKey(col.Column, rule)
			label := fmt.Sprintf("%s → %s (%s)", col.Column, rule, col.Type)
			options = append(options, huh.NewOption(label, key))
			preselected = append(preselected, key)
		}
	}

	chosen := preselected
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Classifications to apply").
			Description("space toggles, enter confirms").
			Options(options...).
			Value(&chosen),
	))
	if err := form.Run(); err != nil {
		return err
	}

	for key := range selection {
		delete(selection, key)
	}
	for _, key := range chosen {
		parts := strings.SplitN(key, "|", 2)
		selection.Toggle(parts[0], parts[1])
	}
	return nil
}

// runClassifyHistory lists past classification runs.
func runClassifyHistory(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	history, err := client.ClassificationHistory(cmd.Context(), historyLimit)
	if err != nil {
		fail(err)
	}
	printClassificationHistory(history)
}

func printClassificationHistory(history []api.ClassificationHistoryEntry) {
	if len(history) == 0 {
		ux.Muted("No classification runs yet.")
		return
	}
	rows := make([][]any, 0, len(history))
	for _, h := range history {
		rows = append(rows, []any{
			h.Timestamp, h.SourceTable, h.ClassifiedTable,
			h.ClassificationsApplied, h.TotalRecords,
			fmt.Sprintf("%.1fs", h.ElapsedSeconds),
		})
	}
	ux.PrintTable([]any{"When", "Source", "Classified", "Applied", "Records", "Elapsed"}, rows)
}

// runClassifyMetrics shows the classifier's evaluation scores.
func runClassifyMetrics(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	m, err := client.ClassificationMetrics(cmd.Context())
	if err != nil {
		fail(err)
	}
	ux.PrintTable(
		[]any{"Metric", "Score"},
		[][]any{
			{"Accuracy", fmt.Sprintf("%.3f", m.Accuracy)},
			{"Precision", fmt.Sprintf("%.3f", m.Precision)},
			{"Recall", fmt.Sprintf("%.3f", m.Recall)},
			{"F1", fmt.Sprintf("%.3f", m.F1Score)},
		},
	)
}

// runClassifyDistribution shows case counts per severity class.
func runClassifyDistribution(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	dist, err := client.SeverityDistribution(cmd.Context())
	if err != nil {
		fail(err)
	}
	printDistribution(dist)
}

// runClassifySamples shows classified cases for spot checks.
func runClassifySamples(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	samples, err := client.ClassificationSamples(cmd.Context(), samplesLimit)
	if err != nil {
		fail(err)
	}
	if len(samples) == 0 {
		ux.Muted("No classified cases yet. Run `covidctl classify run` first.")
		return
	}
	rows := make([][]any, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []any{s.CaseID, s.Age, s.Symptoms, s.Severity,
			fmt.Sprintf("%.0f%%", s.Confidence*100)})
	}
	ux.PrintTable([]any{"Case", "Age", "Symptoms", "Severity", "Confidence"}, rows)
}

// printDistribution renders a map of class counts as sorted rows with
// proportional bars.
func printDistribution(dist map[string]int) {
	if len(dist) == 0 {
		ux.Muted("No classified data yet.")
		return
	}
	classes := make([]string, 0, len(dist))
	total := 0
	for class, n := range dist {
		classes = append(classes, class)
		total += n
	}
	sort.Strings(classes)
	rows := make([][]any, 0, len(classes))
	for _, class := range classes {
		n := dist[class]
		rows = append(rows, []any{
			class, n,
			fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total)),
			ux.ProgressBar(n, total, 20),
		})
	}
	ux.PrintTable([]any{"Severity", "Cases", "Share", ""}, rows)
}
