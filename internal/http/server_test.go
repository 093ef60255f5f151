package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"subboard/internal/cache"
	"subboard/internal/catalog"
	"subboard/internal/core"
	"subboard/internal/metrics/memory"
	"subboard/internal/ports"
	"subboard/internal/services"
)

type failingReader struct{}

func (failingReader) FetchReport(context.Context, string, core.ReportQuery) (core.ReportPayload, error) {
	return core.ReportPayload{}, errors.New("sheets: quota exceeded")
}

func newTestServer(t *testing.T, reader ports.MetricsReader, ping func(context.Context) error) *Server {
	t.Helper()
	cat := catalog.Default()
	store := memory.New(memory.SamplePayloads())
	if reader == nil {
		reader = store
	}
	reports := services.NewReportService(reader, cat, cache.NewLRUCache[core.ReportPayload](32, time.Minute))
	favorites := services.NewFavoritesService(store, cat, nil, nil)
	srv := NewServer(":0", Deps{
		Reports:            reports,
		Directory:          services.NewDirectoryService(cat, favorites, nil),
		Favorites:          favorites,
		Ping:               ping,
		RateLimitPerMinute: 100,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func do(t *testing.T, srv *Server, method, target string, cookies []*http.Cookie, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexIssuesSession(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := do(t, srv, http.MethodGet, "/", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Monthly Recurring Revenue", "Revenue Reports", `id="directory"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("session cookie not issued")
	}

	// An existing session is kept.
	rr = do(t, srv, http.MethodGet, "/", []*http.Cookie{session}, nil)
	if len(rr.Result().Cookies()) != 0 {
		t.Errorf("session cookie re-issued for a known session")
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	if rr := do(t, srv, http.MethodGet, "/nope", nil, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestDirectoryPartial(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	tests := []struct {
		name    string
		target  string
		want    []string
		notWant []string
	}{
		{
			name:    "category chip",
			target:  "/ui/reports?category=Revenue+Reports",
			want:    []string{"Revenue by Product", "Monthly Recurring Revenue"},
			notWant: []string{"Churn Report"},
		},
		{
			name:    "search by keyword",
			target:  "/ui/reports?q=attrition",
			want:    []string{"Churn Report", "Showing 1 of"},
			notWant: []string{"Revenue by Product"},
		},
		{
			name:   "no match",
			target: "/ui/reports?q=zzzz",
			want:   []string{"No reports found", "Clear filters"},
		},
		{
			name:   "unknown category falls back to all",
			target: "/ui/reports?category=Bogus",
			want:   []string{"Churn Report", "Monthly Recurring Revenue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.target, nil, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d", rr.Code)
			}
			body := rr.Body.String()
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("body missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Errorf("body unexpectedly contains %q", w)
				}
			}
		})
	}
}

func TestToggleFavoriteAndFavoritesChip(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	session := []*http.Cookie{{Name: sessionCookieName, Value: "7b0c1f43-6d1e-4c5e-9f0a-2f5b2b7d9a11"}}

	rr := do(t, srv, http.MethodPost, "/ui/favorites/mrr", session, url.Values{"q": {""}, "category": {"All"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle status=%d body=%s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"favorite:toggled"`) || !strings.Contains(trigger, `"favorite":true`) {
		t.Errorf("HX-Trigger = %s", trigger)
	}

	rr = do(t, srv, http.MethodGet, "/api/reports?category=Favorites", session, nil)
	var got apiDirectory
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Visible != 1 || len(got.Groups) != 1 || got.Groups[0].Reports[0].ID != "mrr" {
		t.Fatalf("favorites view = %+v", got)
	}
	if got.Counts[1].Label != catalog.CategoryFavorites || got.Counts[1].Count != 1 {
		t.Errorf("counts = %+v", got.Counts)
	}

	// Toggling again removes it.
	rr = do(t, srv, http.MethodPost, "/ui/favorites/mrr", session, url.Values{})
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"favorite":false`) {
		t.Errorf("second toggle trigger = %s", rr.Header().Get("HX-Trigger"))
	}
}

func TestToggleUnknownReport(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rr := do(t, srv, http.MethodPost, "/ui/favorites/not-a-report", nil, url.Values{})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestClearFilters(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rr := do(t, srv, http.MethodPost, "/ui/filters/clear", nil, url.Values{})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("HX-Trigger") != `{"filters:cleared":{}}` {
		t.Errorf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}
	if !strings.Contains(rr.Body.String(), "Churn Report") {
		t.Error("cleared directory should list every report")
	}
}

func TestReportPartial(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	tests := []struct {
		name     string
		target   string
		status   int
		contains string
	}{
		{"breakdown", "/ui/reports/mrr", http.StatusOK, "$482,150.00"},
		{"rate metric", "/ui/reports/mrr", http.StatusOK, "3.1%"},
		{"unseeded report renders defaults", "/ui/reports/arpu", http.StatusOK, "$0.00"},
		{"unknown report", "/ui/reports/nope", http.StatusNotFound, "Report not found"},
		{"inverted range", "/ui/reports/mrr?from=2025-03-01&to=2025-01-01", http.StatusUnprocessableEntity, "before the start"},
		{"malformed date", "/ui/reports/mrr?from=yesterday", http.StatusUnprocessableEntity, "Invalid filter value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.target, nil, nil)
			if rr.Code != tt.status {
				t.Fatalf("status=%d, want %d", rr.Code, tt.status)
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("body missing %q: %s", tt.contains, rr.Body.String())
			}
		})
	}
}

func TestReportPartialUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, failingReader{}, nil)
	rr := do(t, srv, http.MethodGet, "/ui/reports/mrr", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), services.FailedMessage) {
		t.Errorf("body missing failed message: %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/reports/mrr/data", nil, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("api status=%d", rr.Code)
	}
}

func TestReportPageStartsLoading(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rr := do(t, srv, http.MethodGet, "/reports/churn?products=pro,basic", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Churn Report", `hx-trigger="load"`, "/ui/reports/churn?products=basic%2Cpro", "Loading"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestAPIReportData(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rr := do(t, srv, http.MethodGet, "/api/reports/cac/data", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var p core.ReportPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ReportID != "cac" || p.Metric("cac_cents") != 4210 {
		t.Errorf("payload = %+v", p)
	}

	rr = do(t, srv, http.MethodGet, "/api/reports/nope/data", nil, nil)
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), `"error"`) {
		t.Errorf("unknown report: status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthReadyMetrics(t *testing.T) {
	srv := newTestServer(t, nil, func(context.Context) error { return nil })
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := do(t, srv, http.MethodGet, path, nil, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodGet, "/metrics", nil, nil)
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Errorf("metrics body = %s", rr.Body.String())
	}

	down := newTestServer(t, nil, func(context.Context) error { return errors.New("database is locked") })
	rr = do(t, down, http.MethodGet, "/readyz", nil, nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing backend status=%d", rr.Code)
	}
}

func TestSecurityHeadersAndBlocking(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rr := do(t, srv, http.MethodGet, "/healthz", nil, nil)
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers not applied")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request id not set")
	}
	if rr := do(t, srv, http.MethodGet, "/.git/config", nil, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("probe status=%d", rr.Code)
	}
}
