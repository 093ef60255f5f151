package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMX event names sent in HX-Trigger. web/static/app.js listens for them.
const (
	eventFavoriteToggled = "favorite:toggled"
	eventFiltersCleared  = "filters:cleared"
	eventNotification    = "show-notification"
)

// HTMXResponse assembles a fragment response and its HX-Trigger header.
type HTMXResponse struct {
	status   int
	triggers map[string]any
	body     []byte
}

func NewHTMXResponse() *HTMXResponse {
	return &HTMXResponse{status: http.StatusOK, triggers: make(map[string]any)}
}

func (b *HTMXResponse) Status(code int) *HTMXResponse {
	b.status = code
	return b
}

// Trigger queues a client event. A later call with the same name wins.
func (b *HTMXResponse) Trigger(name string, detail any) *HTMXResponse {
	b.triggers[name] = detail
	return b
}

func (b *HTMXResponse) TriggerFavoriteToggled(reportID string, favorite bool) *HTMXResponse {
	return b.Trigger(eventFavoriteToggled, map[string]any{"report_id": reportID, "favorite": favorite})
}

// TriggerFiltersCleared tells the page to empty the search box.
func (b *HTMXResponse) TriggerFiltersCleared() *HTMXResponse {
	return b.Trigger(eventFiltersCleared, struct{}{})
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notify shows a toast; errors stay on screen longer.
func (b *HTMXResponse) Notify(kind NotificationType, message string) *HTMXResponse {
	duration := 3000
	if kind == NotificationError {
		duration = 5000
	}
	return b.Trigger(eventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": duration,
	})
}

func (b *HTMXResponse) HTML(body []byte) *HTMXResponse {
	b.body = body
	return b
}

func (b *HTMXResponse) Write(w http.ResponseWriter) {
	if len(b.triggers) > 0 {
		if raw, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
	}
	if len(b.body) > 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse is an escaped error fragment that also raises an error toast.
func ErrorResponse(status int, message string) *HTMXResponse {
	return NewHTMXResponse().
		Status(status).
		Notify(NotificationError, message).
		HTML([]byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
}
