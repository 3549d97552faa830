package debtapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"debtwatch/internal/services/debtapi"
)

func TestUploadTicketsSendsMultipartFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tickets/upload" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file field: %v", err)
		} else {
			defer file.Close()
			if header.Filename != "tickets.csv" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"inserted":120,"errors":[]}}`))
	}))
	defer server.Close()

	client := debtapi.NewHTTPClient(server.URL, "tok", nil)
	result, err := client.UploadTickets(context.Background(), "tickets.csv", strings.NewReader("id,summary\n1,slow\n"))
	if err != nil {
		t.Fatalf("UploadTickets failed: %v", err)
	}
	if result.Inserted != 120 {
		t.Fatalf("expected 120 inserted, got %d", result.Inserted)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no row errors, got %v", result.Errors)
	}
}

func TestUploadUsageSendsOrganizationAndForce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/usage/upload" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("force") != "true" {
			t.Errorf("expected force=true query, got %q", r.URL.RawQuery)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("organization"); got != "Acme" {
			t.Errorf("unexpected organization %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"inserted":42,"errors":["row 3: bad date"]}}`))
	}))
	defer server.Close()

	client := debtapi.NewHTTPClient(server.URL, "", nil)
	result, err := client.UploadUsage(context.Background(), "usage.csv", strings.NewReader("a,b\n"), "Acme", true)
	if err != nil {
		t.Fatalf("UploadUsage failed: %v", err)
	}
	if result.Inserted != 42 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestUploadUsageDecodesConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"recent upload exists","daysSinceLastUpload":10,"lastUploadDate":"2026-08-21T00:00:00Z"}`))
	}))
	defer server.Close()

	client := debtapi.NewHTTPClient(server.URL, "", nil)
	_, err := client.UploadUsage(context.Background(), "usage.csv", strings.NewReader("a\n"), "Acme", false)
	var conflict *debtapi.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.DaysSinceLastUpload != 10 {
		t.Fatalf("unexpected conflict metadata %#v", conflict)
	}
}

func TestUploadReportsBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := debtapi.NewHTTPClient(server.URL, "", nil)
	_, err := client.UploadTickets(context.Background(), "tickets.csv", strings.NewReader("a\n"))
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLastUploadDateParsesTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("organization"); got != "Acme Corp" {
			t.Errorf("unexpected organization %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"usage":"2026-08-21T12:30:00Z"}`))
	}))
	defer server.Close()

	client := debtapi.NewHTTPClient(server.URL, "", nil)
	got, err := client.LastUploadDate(context.Background(), "Acme Corp")
	if err != nil {
		t.Fatalf("LastUploadDate failed: %v", err)
	}
	want := time.Date(2026, 8, 21, 12, 30, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLastUploadDateNullMeansNoUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"usage":null}`))
	}))
	defer server.Close()

	client := debtapi.NewHTTPClient(server.URL, "", nil)
	got, err := client.LastUploadDate(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("LastUploadDate failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for null usage date, got %v", got)
	}
}
