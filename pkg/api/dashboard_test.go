// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"context"
	"net/http"
	"testing"
)

func TestGeographic_DecodesRegions(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"data": [
				{"country": "Colombia", "region": "Bogotá", "total_cases": 12400, "deaths": 310},
				{"country": "Colombia", "region": "Antioquia", "total_cases": 9800, "deaths": 205}
			],
			"total_locations": 2
		}`))
	}))

	entries, err := client.Geographic(context.Background())
	if err != nil {
		t.Fatalf("Geographic: %v", err)
	}
	if gotPath != "/api/dashboard/geographic" {
		t.Errorf("request path = %q", gotPath)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Region != "Bogotá" || entries[0].TotalCases != 12400 {
		t.Errorf("first entry = %+v", entries[0])
	}
}

func TestAgeDistribution_DecodesBuckets(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"age_group": "0-17", "count": 120},
			{"age_group": "75+", "count": 340}
		]}`))
	}))

	buckets, err := client.AgeDistribution(context.Background())
	if err != nil {
		t.Fatalf("AgeDistribution: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(buckets))
	}
	if buckets[1].AgeGroup != "75+" || buckets[1].Count != 340 {
		t.Errorf("second bucket = %+v", buckets[1])
	}
}

func TestVaccination_DecodesRate(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"total": 1000,
			"vaccinated": 640,
			"not_vaccinated": 360,
			"vaccination_rate": 64.0
		}`))
	}))

	stats, err := client.Vaccination(context.Background())
	if err != nil {
		t.Fatalf("Vaccination: %v", err)
	}
	if stats.Vaccinated != 640 || stats.VaccinationRate != 64.0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestKPIs_DecodesReport(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"total_cases": 15000,
			"critical_cases": 420,
			"mortality_rate": 2.8,
			"average_age": 41.5,
			"updated_at": "2026-02-11T10:00:00"
		}`))
	}))

	report, err := client.KPIs(context.Background())
	if err != nil {
		t.Fatalf("KPIs: %v", err)
	}
	if report.TotalCases != 15000 || report.MortalityRate != 2.8 {
		t.Errorf("report = %+v", report)
	}
	if report.UpdatedAt == "" {
		t.Error("UpdatedAt missing")
	}
}
