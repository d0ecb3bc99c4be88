package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/service"
)

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-08-01T15:04:05Z", time.Date(2026, 8, 1, 15, 4, 5, 0, time.UTC), false},
		{"2026-08-01 15:04:05", time.Date(2026, 8, 1, 15, 4, 5, 0, time.UTC), false},
		{"2026-08-01", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
		{"08/01/2026", time.Time{}, true},
	}
	for _, tc := range cases {
		got, err := parseQueryTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseQueryTime(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseQueryTime(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parseQueryTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsDateOnly(t *testing.T) {
	if !isDateOnly("2026-08-01") {
		t.Fatalf("date-only string misclassified")
	}
	if isDateOnly("2026-08-01T10:00:00Z") || isDateOnly("2026-08-01 10:00:00") {
		t.Fatalf("datetime string misclassified")
	}
}

func TestGetLogs_FiltersAndDateOnlyEndOfDay(t *testing.T) {
	el := &mockEventLog{resp: []models.ThermostatEvent{
		{EventID: "a", Type: models.EventModeChange, Description: "OFF -> HEAT"},
	}}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		EventLog:      el,
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=2026-08-01&to=2026-08-02&type=mode_change", nil)
	addAuth(req)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Count  int                      `json:"count"`
		Events []models.ThermostatEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || len(resp.Events) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	// type is normalized to uppercase before hitting the service
	if el.lastType != "MODE_CHANGE" {
		t.Fatalf("type filter = %q", el.lastType)
	}
	if !el.lastFrom.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", el.lastFrom)
	}
	// date-only "to" covers the whole day
	endOfDay := time.Date(2026, 8, 2, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	if !el.lastTo.Equal(endOfDay) {
		t.Fatalf("to = %v, want %v", el.lastTo, endOfDay)
	}
}

func TestGetLogs_BadInput(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		EventLog:      &mockEventLog{},
	}
	r := newTestRouter(s)

	for _, q := range []string{
		"from=notadate",
		"to=08/01/2026",
		"from=2026-08-02&to=2026-08-01", // inverted range
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?"+q, nil)
		addAuth(req)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %d", q, w.Code)
		}
	}
}

func TestGetLogs_ServiceError(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		EventLog:      &mockEventLog{err: errors.New("db down")},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/", nil)
	addAuth(req)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
