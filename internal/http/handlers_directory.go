package http

import (
	"net/http"

	"subboard/internal/catalog"
	applog "subboard/internal/log"
	"subboard/internal/services"
)

type directoryPage struct {
	services.DirectoryView
	// Title is set by the full page only.
	Title string
}

// handleIndex renders the full directory page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	session := sessionID(w, r)
	params := ParseDirectoryParams(r.URL.Query())
	view, err := s.directory.Directory(r.Context(), session, params.Query, params.Category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", directoryPage{DirectoryView: view, Title: "Reports"}); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err)
	}
}

// handleDirectoryPartial re-renders the directory for the current search and chip.
func (s *Server) handleDirectoryPartial(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	params := ParseDirectoryParams(r.URL.Query())
	view, err := s.directory.Directory(r.Context(), session, params.Query, params.Category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDirectory(w, r, NewHTMXResponse(), view)
}

// handleToggleFavorite stars or unstars a report and returns the refreshed
// directory for the filters posted alongside.
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	session := sessionID(w, r)
	reportID := r.PathValue("id")
	favorite, err := s.favorites.Toggle(r.Context(), session, reportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	params := ParseDirectoryParams(r.Form)
	view, err := s.directory.Directory(r.Context(), session, params.Query, params.Category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	note := "Removed from favorites"
	if favorite {
		note = "Added to favorites"
	}
	s.writeDirectory(w, r, NewHTMXResponse().
		TriggerFavoriteToggled(reportID, favorite).
		Notify(NotificationSuccess, note), view)
}

// handleClearFilters resets search and category. Favorites are kept.
func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	view, err := s.directory.Cleared(r.Context(), session)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDirectory(w, r, NewHTMXResponse().TriggerFiltersCleared(), view)
}

func (s *Server) writeDirectory(w http.ResponseWriter, r *http.Request, resp *HTMXResponse, view services.DirectoryView) {
	body, err := s.render("directory", directoryPage{DirectoryView: view})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Directory render failed", applog.FieldError, err)
		ErrorResponse(http.StatusInternalServerError, "Could not render reports").Write(w)
		return
	}
	resp.HTML(body).Write(w)
}

// apiDirectory is the JSON shape of /api/reports.
type apiDirectory struct {
	Query    string               `json:"query"`
	Category string               `json:"category"`
	Groups   []catalog.Group      `json:"groups"`
	Counts   []catalog.LabelCount `json:"counts"`
	Total    int                  `json:"total"`
	Visible  int                  `json:"visible"`
}

func (s *Server) handleAPIReports(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	params := ParseDirectoryParams(r.URL.Query())
	view, err := s.directory.Directory(r.Context(), session, params.Query, params.Category)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	groups := view.Groups
	if groups == nil {
		groups = []catalog.Group{}
	}
	writeJSON(w, http.StatusOK, apiDirectory{
		Query:    view.State.Query,
		Category: view.State.Category,
		Groups:   groups,
		Counts:   view.Counts.Entries(),
		Total:    view.Total,
		Visible:  view.Visible,
	})
}
