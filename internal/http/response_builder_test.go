package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]map[string]any {
	t.Helper()
	raw := w.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var out map[string]map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, raw)
	}
	return out
}

func TestHTMXResponse_Defaults(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("HX-Trigger") != "" || w.Header().Get("Content-Type") != "" {
		t.Errorf("unexpected headers %v", w.Header())
	}
}

func TestHTMXResponse_FavoriteToggled(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerFavoriteToggled("mrr", true).
		Notify(NotificationSuccess, "Added to favorites").
		HTML([]byte("<section></section>")).
		Write(w)

	triggers := decodeTriggers(t, w)
	toggled := triggers[eventFavoriteToggled]
	if toggled["report_id"] != "mrr" || toggled["favorite"] != true {
		t.Errorf("favorite:toggled = %v", toggled)
	}
	note := triggers[eventNotification]
	if note["type"] != "success" || note["message"] != "Added to favorites" || note["duration"] != float64(3000) {
		t.Errorf("show-notification = %v", note)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "<section></section>" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestHTMXResponse_FiltersCleared(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().TriggerFiltersCleared().Write(w)

	if trigger := w.Header().Get("HX-Trigger"); trigger != `{"filters:cleared":{}}` {
		t.Errorf("HX-Trigger = %s", trigger)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		status  int
		message string
		body    string
	}{
		{http.StatusNotFound, "Report not found", `<div class="error">Report not found</div>`},
		{http.StatusUnprocessableEntity, "Invalid filter value", `<div class="error">Invalid filter value</div>`},
		{http.StatusInternalServerError, "<script>x</script>", `<div class="error">&lt;script&gt;x&lt;/script&gt;</div>`},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		ErrorResponse(tt.status, tt.message).Write(w)

		if w.Code != tt.status {
			t.Errorf("status = %d, want %d", w.Code, tt.status)
		}
		if w.Body.String() != tt.body {
			t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
		}
		note := decodeTriggers(t, w)[eventNotification]
		if note["type"] != "error" || note["duration"] != float64(5000) {
			t.Errorf("notification = %v", note)
		}
		if strings.Contains(w.Body.String(), "<script>") {
			t.Error("message not escaped")
		}
	}
}
