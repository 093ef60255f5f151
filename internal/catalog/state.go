package catalog

import "strings"

// FilterState is the ephemeral per-view selection driving the directory:
// the search text, the active category chip and the starred reports.
//
// Every mutator touches exactly one field, so any interleaving of them ends
// in the same state as applying them in order.
type FilterState struct {
	Query     string
	Category  string
	Favorites FavoriteSet
}

// NewFilterState returns the initial state: no query, All selected.
func NewFilterState(favorites FavoriteSet) FilterState {
	if favorites == nil {
		favorites = NewFavoriteSet()
	}
	return FilterState{Category: CategoryAll, Favorites: favorites}
}

// SetQuery replaces the search text.
func (s *FilterState) SetQuery(q string) { s.Query = q }

// SetCategory selects a category chip. An empty label selects All.
func (s *FilterState) SetCategory(label string) {
	if strings.TrimSpace(label) == "" {
		label = CategoryAll
	}
	s.Category = label
}

// ToggleFavorite flips the favorite status of id and returns the new status.
func (s *FilterState) ToggleFavorite(id string) bool {
	if s.Favorites == nil {
		s.Favorites = NewFavoriteSet()
	}
	return s.Favorites.Toggle(id)
}

// Clear resets the search text and category. Favorites are kept.
func (s *FilterState) Clear() {
	s.Query = ""
	s.Category = CategoryAll
}

// IsFiltered reports whether the state narrows the catalog at all.
func (s FilterState) IsFiltered() bool {
	return strings.TrimSpace(s.Query) != "" || (s.Category != "" && s.Category != CategoryAll)
}
