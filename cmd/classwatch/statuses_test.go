package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/goodtune/classwatch/internal/storage"
)

func TestFetchStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_statuses" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"alice":{"status":"Engaged","timestamp":1714554000.5}}`))
	}))
	defer srv.Close()

	statuses, err := fetchStatuses(srv.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("fetchStatuses failed: %v", err)
	}
	rec, ok := statuses["alice"]
	if !ok {
		t.Fatal("Expected alice in statuses")
	}
	if rec.Status != "Engaged" {
		t.Errorf("Expected Engaged, got %q", rec.Status)
	}
	if rec.Timestamp.UnixMilli() != 1714554000500 {
		t.Errorf("Unexpected timestamp %v", rec.Timestamp)
	}
}

func TestFetchStatuses_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := fetchStatuses(srv.URL, time.Second); err == nil {
		t.Error("Expected error for 500 response")
	}
}

func TestPrintStatuses(t *testing.T) {
	color.NoColor = true
	now := time.Date(2024, 5, 1, 9, 0, 30, 0, time.UTC)

	statuses := map[string]storage.StatusRecord{
		"bob":   {Status: "Zoned Out", Timestamp: now.Add(-2 * time.Second)},
		"alice": {Status: "Engaged", Timestamp: now.Add(-1 * time.Second)},
		"carol": {Status: "Engaged", Timestamp: now.Add(-20 * time.Second)},
	}

	var buf bytes.Buffer
	printStatuses(&buf, statuses, now, 10*time.Second)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header and 3 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "alice") || !strings.HasPrefix(lines[2], "bob") || !strings.HasPrefix(lines[3], "carol") {
		t.Errorf("Expected rows sorted by student id:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "Zoned Out") {
		t.Errorf("Expected bob to be Zoned Out: %q", lines[2])
	}
	if strings.Contains(lines[1], "stale") {
		t.Errorf("Fresh record marked stale: %q", lines[1])
	}
	if !strings.Contains(lines[3], "20s ago (stale)") {
		t.Errorf("Expected carol to be stale: %q", lines[3])
	}
}

func TestPrintStatuses_Empty(t *testing.T) {
	var buf bytes.Buffer
	printStatuses(&buf, nil, time.Now(), 10*time.Second)
	if !strings.Contains(buf.String(), "No students") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestPrintStatuses_UnknownStatus(t *testing.T) {
	color.NoColor = true
	now := time.Date(2024, 5, 1, 9, 0, 30, 0, time.UTC)

	var buf bytes.Buffer
	printStatuses(&buf, map[string]storage.StatusRecord{
		"dave": {Status: "Asleep", Timestamp: now.Add(-time.Second)},
		"erin": {Status: "Engaged", Timestamp: now.Add(-time.Second)},
	}, now, 10*time.Second)

	out := buf.String()
	if !strings.Contains(out, "Asleep") || !strings.Contains(out, "1s ago (unknown status)") {
		t.Errorf("Expected unknown status to be flagged:\n%s", out)
	}
	if strings.Count(out, "unknown status") != 1 {
		t.Errorf("Only dave should be flagged:\n%s", out)
	}
}
