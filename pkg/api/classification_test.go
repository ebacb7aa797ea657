// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestExecuteClassification_EmptySelection_NoNetworkCall(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	_, err := client.ExecuteClassification(context.Background(), "covid_clean", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if calls != 0 {
		t.Errorf("server received %d calls, want 0", calls)
	}
}

func TestExecuteClassification_SendsSelection(t *testing.T) {
	var body struct {
		TableName       string               `json:"table_name"`
		Classifications []ClassificationRule `json:"classifications"`
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Write([]byte(`{
			"message": "Clasificación aplicada",
			"total_records": 950,
			"classifications_applied": 2,
			"classified_table": "covid_clean_classified",
			"elapsed_seconds": 3.2
		}`))
	}))

	rules := []ClassificationRule{
		{Column: "edad", Rule: "age_group"},
		{Column: "fecha", Rule: "month"},
	}
	result, err := client.ExecuteClassification(context.Background(), "covid_clean", rules)
	if err != nil {
		t.Fatalf("ExecuteClassification: %v", err)
	}
	if body.TableName != "covid_clean" {
		t.Errorf("sent table_name = %q", body.TableName)
	}
	if len(body.Classifications) != 2 || body.Classifications[0].Rule != "age_group" {
		t.Errorf("sent classifications = %+v", body.Classifications)
	}
	if result.ClassifiedTable != "covid_clean_classified" {
		t.Errorf("ClassifiedTable = %q", result.ClassifiedTable)
	}
}

func TestAnalyzeTable_DecodesSuggestions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		w.Write([]byte(`{
			"table_name": "covid_clean",
			"classifiable_columns": [
				{"column": "edad", "type": "int", "suggested_rules": ["age_group", "age_range"]},
				{"column": "fecha", "type": "date", "suggested_rules": ["month"]}
			],
			"total_classifiable": 2
		}`))
	}))

	analysis, err := client.AnalyzeTable(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeTable: %v", err)
	}
	if analysis.TotalClassifiable != 2 {
		t.Errorf("TotalClassifiable = %d", analysis.TotalClassifiable)
	}
	if len(analysis.ClassifiableColumns[0].SuggestedRules) != 2 {
		t.Errorf("SuggestedRules = %v", analysis.ClassifiableColumns[0].SuggestedRules)
	}
}

func TestClassificationSamples_SendsLimit(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{
			"samples": [
				{"case_id": "C-901", "age": 67, "symptoms": "fiebre, tos", "severity": "Grave", "classification_confidence": 0.92}
			],
			"total": 1
		}`))
	}))

	samples, err := client.ClassificationSamples(context.Background(), 10)
	if err != nil {
		t.Fatalf("ClassificationSamples: %v", err)
	}
	if gotQuery != "limit=10" {
		t.Errorf("query = %q, want limit=10", gotQuery)
	}
	if len(samples) != 1 || samples[0].Severity != "Grave" || samples[0].Confidence != 0.92 {
		t.Errorf("samples = %+v", samples)
	}
}
