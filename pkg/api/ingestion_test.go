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

func TestValidateUploadFile_Extensions(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"cases.csv", false},
		{"cases.CSV", false},
		{"datos.xlsx", false},
		{"datos.xls", false},
		{"cases.json", false},
		{"cases.txt", true},
		{"cases.parquet", true},
		{"noextension", true},
		{"archive.csv.gz", true},
	}
	for _, tt := range tests {
		err := ValidateUploadFile(tt.filename, 1024)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateUploadFile(%q): err = %v, wantErr = %v", tt.filename, err, tt.wantErr)
		}
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("ValidateUploadFile(%q): error type = %T, want *ValidationError", tt.filename, err)
			}
		}
	}
}

func TestValidateUploadFile_SizeLimit(t *testing.T) {
	if err := ValidateUploadFile("big.csv", MaxUploadSize); err != nil {
		t.Errorf("file at exactly 500MB should pass: %v", err)
	}
	err := ValidateUploadFile("big.csv", MaxUploadSize+1)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("oversized file: error = %v, want *ValidationError", err)
	}
}

func TestUpload_InvalidFile_NoNetworkCall(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	_, err := client.Upload(context.Background(), "malware.exe", strings.NewReader("x"), 1)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if calls != 0 {
		t.Errorf("server received %d calls, want 0", calls)
	}
}

func TestUpload_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ingest/upload" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		file.Close()
		if header.Filename != "cases.csv" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.Write([]byte(`{
			"ingestion_id": "abc123",
			"filename": "cases.csv",
			"records_count": 500,
			"status": "completed",
			"message": "Archivo cargado exitosamente"
		}`))
	}))

	result, err := client.Upload(context.Background(), "cases.csv",
		strings.NewReader("id,age\n1,34\n"), 2*1024*1024)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.IngestionID != "abc123" {
		t.Errorf("IngestionID = %q, want abc123", result.IngestionID)
	}
	if result.RecordsCount != 500 {
		t.Errorf("RecordsCount = %d, want 500", result.RecordsCount)
	}
	if result.Message != "Archivo cargado exitosamente" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestUpload_ServerRejection_SurfacesDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Archivo inválido"}`))
	}))

	_, err := client.Upload(context.Background(), "cases.csv", strings.NewReader("x"), 10)
	if UserMessage(err) != "Archivo inválido" {
		t.Errorf("UserMessage = %q, want server detail", UserMessage(err))
	}
}

func TestUploadHistory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uploads": [
			{"ingestion_id": "ING-1", "filename": "a.csv", "records_count": 10},
			{"ingestion_id": "ING-2", "filename": "b.csv", "records_count": 20}
		], "total": 2}`))
	}))

	history, err := client.UploadHistory(context.Background())
	if err != nil {
		t.Fatalf("UploadHistory: %v", err)
	}
	if len(history.Uploads) != 2 {
		t.Fatalf("len(Uploads) = %d, want 2", len(history.Uploads))
	}
	if history.Uploads[1].Filename != "b.csv" {
		t.Errorf("Uploads[1].Filename = %q", history.Uploads[1].Filename)
	}
}
