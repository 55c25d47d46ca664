package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/ledger"
)

func TestAttendanceMarkFirstWins(t *testing.T) {
	handler := NewAttendanceHandler(testSystem(t))

	mark := func() ledger.MarkResult {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/Alice", nil)
		req = requestWithChiParams(req, map[string]string{"name": "Alice"})
		rec := httptest.NewRecorder()
		handler.Mark(rec, req)
		assertStatusCode(t, rec, http.StatusOK)

		var result ledger.MarkResult
		parseJSONResponse(t, rec, &result)
		return result
	}

	first := mark()
	if !first.Accepted || first.Time == "" {
		t.Fatalf("first mark should be accepted with a time, got %+v", first)
	}

	second := mark()
	if second.Accepted {
		t.Error("same-day mark should be rejected")
	}
	if second.ExistingTime != first.Time {
		t.Errorf("existing time = %q; want %q", second.ExistingTime, first.Time)
	}
}

func TestAttendanceDatesEmpty(t *testing.T) {
	handler := NewAttendanceHandler(testSystem(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/dates", nil)
	rec := httptest.NewRecorder()
	handler.Dates(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Dates []string `json:"dates"`
	}
	parseJSONResponse(t, rec, &resp)
	if resp.Dates == nil || len(resp.Dates) != 0 {
		t.Errorf("dates = %v; want empty list", resp.Dates)
	}
}

func TestAttendanceShow(t *testing.T) {
	sys := testSystem(t)
	sys.MarkAttendance("Alice")
	today := time.Now().Format(ledger.DateFormat)
	handler := NewAttendanceHandler(sys)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/"+today, nil)
	req = requestWithChiParams(req, map[string]string{"date": today})
	rec := httptest.NewRecorder()
	handler.Show(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Date    string          `json:"date"`
		Records []ledger.Record `json:"records"`
	}
	parseJSONResponse(t, rec, &resp)
	if resp.Date != today {
		t.Errorf("date = %q; want %q", resp.Date, today)
	}
	if len(resp.Records) != 1 || resp.Records[0].Name != "Alice" {
		t.Errorf("records = %+v; want single Alice entry", resp.Records)
	}
}

func TestAttendanceShowUnknownDate(t *testing.T) {
	handler := NewAttendanceHandler(testSystem(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/2024-01-01", nil)
	req = requestWithChiParams(req, map[string]string{"date": "2024-01-01"})
	rec := httptest.NewRecorder()
	handler.Show(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Records []ledger.Record `json:"records"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Records) != 0 {
		t.Errorf("records = %+v; want empty", resp.Records)
	}
}

func TestAttendanceRange(t *testing.T) {
	sys := testSystem(t)
	sys.MarkAttendance("Alice")
	sys.MarkAttendance("Bob")
	handler := NewAttendanceHandler(sys)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?from=2000-01-01", nil)
	rec := httptest.NewRecorder()
	handler.Range(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Records []ledger.Record `json:"records"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Records) != 2 {
		t.Errorf("got %d records; want 2", len(resp.Records))
	}
}
