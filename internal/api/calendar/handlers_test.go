package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/villadaniela/fincaweb/internal/api/apiutil"
	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/testutil"
)

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func setupCalendarTest(t *testing.T) *db.DB {
	t.Helper()

	d := testutil.NewTestDB(t)

	prevDatabase := database
	prevQueries := queries
	t.Cleanup(func() {
		database = prevDatabase
		queries = prevQueries
	})
	database = d
	queries = d.Queries

	return d
}

func postRanges(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/fechas-ocupadas", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	HandleReplaceRanges(rec, req)
	return rec
}

func listRanges(t *testing.T) []rangeResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/availability", nil)
	rec := httptest.NewRecorder()
	HandleListRanges(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out []rangeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestReplaceThenListRoundTrip(t *testing.T) {
	setupCalendarTest(t)

	rec := postRanges(t, `{"ranges": [{"start": "2025-06-01", "end": "2025-06-05"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := listRanges(t)
	if len(got) != 1 {
		t.Fatalf("expected 1 range, got %d", len(got))
	}
	if got[0].Start != "2025-06-01T00:00:00.000Z" || got[0].End != "2025-06-05T00:00:00.000Z" {
		t.Errorf("unexpected range %+v", got[0])
	}
}

func TestReplaceOrdersByStartAscending(t *testing.T) {
	setupCalendarTest(t)

	rec := postRanges(t, `{"ranges": [
		{"start": "2025-07-10", "end": "2025-07-12"},
		{"start": "2025-06-01", "end": "2025-06-05"}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := listRanges(t)
	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(got))
	}
	if got[0].Start != "2025-06-01T00:00:00.000Z" {
		t.Errorf("expected earliest range first, got %+v", got)
	}
}

func TestReplaceOverwritesPreviousSet(t *testing.T) {
	setupCalendarTest(t)

	postRanges(t, `{"ranges": [{"start": "2025-06-01", "end": "2025-06-05"}]}`)
	rec := postRanges(t, `{"ranges": [{"start": "2025-08-01", "end": "2025-08-03"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := listRanges(t)
	if len(got) != 1 {
		t.Fatalf("expected previous set to be replaced, got %d ranges", len(got))
	}
	if got[0].Start != "2025-08-01T00:00:00.000Z" {
		t.Errorf("unexpected surviving range %+v", got[0])
	}
}

func TestReplaceWithEmptyArrayClearsCalendar(t *testing.T) {
	setupCalendarTest(t)

	postRanges(t, `{"ranges": [{"start": "2025-06-01", "end": "2025-06-05"}]}`)
	rec := postRanges(t, `{"ranges": []}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := listRanges(t); len(got) != 0 {
		t.Errorf("expected empty calendar, got %d ranges", len(got))
	}
}

func TestInvalidSubmissionLeavesStateUntouched(t *testing.T) {
	setupCalendarTest(t)

	postRanges(t, `{"ranges": [{"start": "2025-06-01", "end": "2025-06-05"}]}`)

	cases := []struct {
		name string
		body string
	}{
		{"missing ranges field", `{}`},
		{"ranges not an array", `{"ranges": "junio"}`},
		{"start after end", `{"ranges": [
			{"start": "2025-06-01", "end": "2025-06-05"},
			{"start": "2025-06-10", "end": "2025-06-08"}
		]}`},
		{"missing endpoint", `{"ranges": [{"start": "2025-06-01"}]}`},
		{"unparseable date", `{"ranges": [{"start": "mañana", "end": "2025-06-05"}]}`},
		{"not json", `not json`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postRanges(t, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("expected JSON error body, got %q", rec.Body.String())
			}
			if body["message"] == "" {
				t.Error("expected a message naming the failing condition")
			}

			got := listRanges(t)
			if len(got) != 1 || got[0].Start != "2025-06-01T00:00:00.000Z" {
				t.Errorf("stored state changed after invalid submission: %+v", got)
			}
		})
	}
}

func TestCheckFailureIsConstraintViolation(t *testing.T) {
	d := setupCalendarTest(t)

	// Inverted endpoints pass neither validation nor the table CHECK; going
	// through Queries directly exercises the database side.
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	err := d.Queries.CreateBusyDateRange(context.Background(), start, end)
	if err == nil {
		t.Fatal("expected inverted range insert to fail")
	}
	if !apiutil.IsSQLiteConstraintViolation(err) {
		t.Errorf("expected a constraint violation, got %v", err)
	}
}

func TestReplaceConflictRollsBack(t *testing.T) {
	d := setupCalendarTest(t)

	postRanges(t, `{"ranges": [{"start": "2025-06-01", "end": "2025-06-05"}]}`)

	// Duplicate start dates are a legal submission, so an extra unique index
	// forces a constraint failure mid-transaction.
	if _, err := d.Exec(`CREATE UNIQUE INDEX idx_busy_start_unique ON busy_date_ranges(start_date)`); err != nil {
		t.Fatalf("create index: %v", err)
	}

	rec := postRanges(t, `{"ranges": [
		{"start": "2025-07-01", "end": "2025-07-03"},
		{"start": "2025-07-01", "end": "2025-07-05"}
	]}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
	if body["message"] == "" {
		t.Error("expected a message telling the admin to retry")
	}

	// The failed replacement must roll back to the previous set.
	got := listRanges(t)
	if len(got) != 1 || got[0].Start != "2025-06-01T00:00:00.000Z" {
		t.Errorf("expected previous calendar to survive the rollback, got %+v", got)
	}
}

func TestListOnEmptyCalendar(t *testing.T) {
	setupCalendarTest(t)

	if got := listRanges(t); len(got) != 0 {
		t.Errorf("expected empty list, got %+v", got)
	}
}
