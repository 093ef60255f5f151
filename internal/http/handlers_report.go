package http

import (
	"net/http"

	applog "subboard/internal/log"
)

// handleReportPage renders the report shell in its loading state; the body
// loads the data partial on arrival.
func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	sessionID(w, r)
	q, err := ParseReportQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.reports.PendingView(r.PathValue("id"), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := s.render("report_page.html", newReportPartial(view))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report page render failed", applog.FieldError, err)
		ErrorResponse(http.StatusInternalServerError, "Could not render report").Write(w)
		return
	}
	NewHTMXResponse().HTML(body).Write(w)
}

// handleReportPartial fetches the report data. A failing query layer renders
// the static unavailable message with 200 so the swap still happens.
func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	q, err := ParseReportQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.reports.LoadView(r.Context(), r.PathValue("id"), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := s.render("report", newReportPartial(view))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report render failed",
			applog.FieldReportID, view.Report.ID,
			applog.FieldError, err)
		ErrorResponse(http.StatusInternalServerError, "Could not render report").Write(w)
		return
	}
	NewHTMXResponse().HTML(body).Write(w)
}

func (s *Server) handleAPIReportData(w http.ResponseWriter, r *http.Request) {
	q, err := ParseReportQuery(r.URL.Query())
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	p, err := s.reports.Fetch(r.Context(), r.PathValue("id"), q)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
