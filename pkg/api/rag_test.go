// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		wantErr  bool
	}{
		{"ok", "¿Cuántos casos hay en total?", false},
		{"too short", "hi", true},
		{"blank", "", true},
		{"whitespace only", "    \t  ", true},
		{"padded short", "  abc  ", true},
		{"too long", strings.Repeat("x", 501), true},
		{"exactly max", strings.Repeat("x", 500), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.question)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuestion(%q): err = %v, wantErr = %v", tt.question, err, tt.wantErr)
			}
		})
	}
}

func TestQuery_BlankQuestion_NoNetworkCall(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	_, err := client.Query(context.Background(), "   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if calls != 0 {
		t.Errorf("server received %d calls, want 0", calls)
	}
}

func TestQuery_DecodesDiagnostics(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"answer": "Hay 950 casos registrados.",
			"sql_query": "SELECT COUNT(*) FROM covid_clean",
			"table_used": "covid_clean",
			"execution_time": 1.8,
			"data_preview": [{"total": 950}],
			"sources": ["covid_clean"]
		}`))
	}))

	answer, err := client.Query(context.Background(), "¿Cuántos casos hay?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if answer.Answer != "Hay 950 casos registrados." {
		t.Errorf("Answer = %q", answer.Answer)
	}
	if answer.SQLQuery != "SELECT COUNT(*) FROM covid_clean" {
		t.Errorf("SQLQuery = %q", answer.SQLQuery)
	}
	if len(answer.DataPreview) != 1 {
		t.Errorf("DataPreview = %v", answer.DataPreview)
	}
}

func TestQueryHistory_Limit(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"history": [{"question": "¿Cuántos casos?", "answer": "950"}]}`))
	}))

	history, err := client.QueryHistory(context.Background(), 5)
	if err != nil {
		t.Fatalf("QueryHistory: %v", err)
	}
	if gotQuery != "limit=5" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(history) != 1 || history[0].Question != "¿Cuántos casos?" {
		t.Errorf("history = %+v", history)
	}
}
