package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/cinematicvideographers/nora/internal/advisor"
	"github.com/cinematicvideographers/nora/internal/pricing"
)

// stubAdvisor satisfies advisoryService without any network calls.
type stubAdvisor struct {
	reply string
	err   error
}

func (a stubAdvisor) Chat(ctx context.Context, message string) (string, error) {
	return a.reply, a.err
}

func (a stubAdvisor) SummarizeQuote(ctx context.Context, quote pricing.Quote, eventDate string) (string, error) {
	return a.reply, a.err
}

func newTestServer(t *testing.T, adv advisoryService) *server {
	t.Helper()

	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := database.Exec(`
		CREATE TABLE quotes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			location TEXT NOT NULL DEFAULT '',
			event_date TEXT NOT NULL DEFAULT '',
			request_json TEXT NOT NULL,
			quote_json TEXT NOT NULL,
			total REAL NOT NULL
		)
	`); err != nil {
		t.Fatalf("create quotes table: %v", err)
	}

	table, err := pricing.NewTable(pricing.DefaultOptions())
	if err != nil {
		t.Fatalf("build price table: %v", err)
	}

	if adv == nil {
		adv = stubAdvisor{err: advisor.ErrUnavailable}
	}

	return &server{db: database, table: table, advisor: adv}
}

func doRequest(t *testing.T, srv *server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func decodeQuoteResponse(t *testing.T, rec *httptest.ResponseRecorder) quoteAPIResponse {
	t.Helper()

	var resp quoteAPIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode quote response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestHandleQuote_ShortEventBilledAtMinimum(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}

	resp := decodeQuoteResponse(t, rec)
	if !resp.OK {
		t.Fatal("expected ok response")
	}
	if resp.Quote.BilledHours != 4 {
		t.Fatalf("billedHours=%v, want 4", resp.Quote.BilledHours)
	}
	if resp.Quote.Total != 1600 {
		t.Fatalf("total=%v, want 1600", resp.Quote.Total)
	}
	if len(resp.Quote.LineItems) != 1 || resp.Quote.LineItems[0].Label != "Coverage (4 hrs)" {
		t.Fatalf("unexpected line items %+v", resp.Quote.LineItems)
	}
	if resp.Summary != "" {
		t.Fatalf("unexpected summary %q", resp.Summary)
	}
}

func TestHandleQuote_FractionalHoursWithAddon(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": 8.5, "addons": ["drone"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}

	resp := decodeQuoteResponse(t, rec)
	if resp.Quote.BilledHours != 8.5 {
		t.Fatalf("billedHours=%v, want 8.5", resp.Quote.BilledHours)
	}
	if resp.Quote.Total != 4100 {
		t.Fatalf("total=%v, want 4100", resp.Quote.Total)
	}

	labels := make([]string, 0, len(resp.Quote.LineItems))
	for _, it := range resp.Quote.LineItems {
		labels = append(labels, it.Label)
	}
	if len(labels) != 2 || labels[0] != "Coverage (8.5 hrs)" || labels[1] != "Drone" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestHandleQuote_StringHoursAccepted(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": "6"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	if resp := decodeQuoteResponse(t, rec); resp.Quote.Total != 2400 {
		t.Fatalf("total=%v, want 2400", resp.Quote.Total)
	}
}

func TestHandleQuote_UnknownAddonRejected(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": 4, "addons": ["unknown_key"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	if resp := decodeErrorResponse(t, rec); resp.Error != "unknown_addon:unknown_key" {
		t.Fatalf("error=%q, want %q", resp.Error, "unknown_addon:unknown_key")
	}

	var count int
	if err := srv.db.QueryRow(`SELECT COUNT(*) FROM quotes`).Scan(&count); err != nil {
		t.Fatalf("count quotes: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected request should not be logged, found %d rows", count)
	}
}

func TestHandleQuote_BadHoursRejected(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, body := range []string{`{}`, `{"hours": 0}`, `{"hours": -2}`, `{"hours": "soon"}`} {
		rec := doRequest(t, srv, http.MethodPost, "/api/quote", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status=%d, want 400", body, rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.Error != "hours" {
			t.Fatalf("body %s: error=%q, want %q", body, resp.Error, "hours")
		}
	}
}

func TestHandleQuote_MalformedJSONRejected(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	if resp := decodeErrorResponse(t, rec); resp.Error != "malformed_json" {
		t.Fatalf("error=%q, want %q", resp.Error, "malformed_json")
	}
}

func TestHandleQuote_GetMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/quote", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d, want 405", rec.Code)
	}
}

func TestHandleQuote_PersistsQuoteLog(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/quote",
		`{"hours": 5, "location": "Austin, TX", "eventDate": "10/12/2026"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}

	var location, eventDate string
	var total float64
	err := srv.db.QueryRow(`SELECT location, event_date, total FROM quotes`).Scan(&location, &eventDate, &total)
	if err != nil {
		t.Fatalf("read quote log: %v", err)
	}
	if location != "Austin, TX" || eventDate != "10/12/2026" || total != 2000 {
		t.Fatalf("logged row = (%q, %q, %v), want (Austin, TX, 10/12/2026, 2000)", location, eventDate, total)
	}
}

func TestHandleQuote_SummarizeUsesAdvisor(t *testing.T) {
	srv := newTestServer(t, stubAdvisor{reply: "Here is your quote!"})

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": 4, "summarize": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	if resp := decodeQuoteResponse(t, rec); resp.Summary != "Here is your quote!" {
		t.Fatalf("summary=%q, want stub reply", resp.Summary)
	}
}

func TestHandleQuote_SummaryDegradesWhenAdvisorUnavailable(t *testing.T) {
	srv := newTestServer(t, stubAdvisor{err: advisor.ErrUnavailable})

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": 4, "summarize": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}

	resp := decodeQuoteResponse(t, rec)
	if resp.Summary != "" {
		t.Fatalf("summary=%q, want empty", resp.Summary)
	}
	if resp.Quote.Total != 1600 {
		t.Fatalf("total=%v, want 1600", resp.Quote.Total)
	}
}

func TestHandleQuote_ResponseNeverMentionsHourlyRate(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/quote", `{"hours": 9, "addons": ["drone", "livestream"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, forbid := range []string{"/hr", "per hour", "hourly", "rate"} {
		if strings.Contains(body, forbid) {
			t.Fatalf("response leaks %q: %s", forbid, body)
		}
	}
}
