package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Group is one category section of the directory.
type Group struct {
	Category string             `json:"category" yaml:"category"`
	Reports  []ReportDescriptor `json:"reports" yaml:"reports"`
}

// Counts maps category chip labels to report counts. Labels keep the order
// All, Favorites, then real categories as first seen in the catalog.
type Counts struct {
	labels []string
	values map[string]int
}

// Get returns the count for label, zero when unknown.
func (c Counts) Get(label string) int { return c.values[label] }

// Labels returns the chip labels in display order.
func (c Counts) Labels() []string { return append([]string(nil), c.labels...) }

// Map returns the counts as a plain map.
func (c Counts) Map() map[string]int {
	out := make(map[string]int, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// LabelCount is one entry of Counts in display order.
type LabelCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Entries returns the counts as an ordered slice.
func (c Counts) Entries() []LabelCount {
	out := make([]LabelCount, 0, len(c.labels))
	for _, l := range c.labels {
		out = append(out, LabelCount{Label: l, Count: c.values[l]})
	}
	return out
}

// matcher lower-cases NFC-normalised text. A cases.Caser keeps state between
// calls, so each filtering pass builds its own.
type matcher struct {
	caser cases.Caser
	query string
}

func newMatcher(query string) *matcher {
	m := &matcher{caser: cases.Lower(language.Und)}
	m.query = m.fold(query)
	return m
}

func (m *matcher) fold(s string) string {
	return m.caser.String(norm.NFC.String(s))
}

func (m *matcher) matches(r ReportDescriptor) bool {
	if m.query == "" {
		return true
	}
	if strings.Contains(m.fold(r.Title), m.query) || strings.Contains(m.fold(r.Description), m.query) {
		return true
	}
	for _, kw := range r.Keywords {
		if strings.Contains(m.fold(kw), m.query) {
			return true
		}
	}
	return false
}

// VisibleReports applies the category restriction of state and then the
// search query. The result keeps catalog order.
func VisibleReports(reports []ReportDescriptor, state FilterState) []ReportDescriptor {
	category := state.Category
	if category == "" {
		category = CategoryAll
	}
	m := newMatcher(state.Query)
	out := make([]ReportDescriptor, 0, len(reports))
	for _, r := range reports {
		switch category {
		case CategoryAll:
		case CategoryFavorites:
			if !state.Favorites.Has(r.ID) {
				continue
			}
		default:
			if r.Category != category {
				continue
			}
		}
		if !m.matches(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GroupByCategory partitions reports by category, keeping first-seen
// category order and the input order inside each group.
func GroupByCategory(reports []ReportDescriptor) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range reports {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, Group{Category: r.Category})
		}
		groups[i].Reports = append(groups[i].Reports, r)
	}
	return groups
}

// CategoryCounts counts the unfiltered catalog per category. The search
// query never affects these numbers. Favorites only count ids that exist in
// reports.
func CategoryCounts(reports []ReportDescriptor, favorites FavoriteSet) Counts {
	c := Counts{
		labels: []string{CategoryAll, CategoryFavorites},
		values: map[string]int{CategoryAll: 0, CategoryFavorites: 0},
	}
	for _, r := range reports {
		if _, ok := c.values[r.Category]; !ok {
			c.labels = append(c.labels, r.Category)
		}
		c.values[r.Category]++
		c.values[CategoryAll]++
		if favorites.Has(r.ID) {
			c.values[CategoryFavorites]++
		}
	}
	return c
}

// Visible is VisibleReports over the catalog.
func (c *Catalog) Visible(state FilterState) []ReportDescriptor {
	if c == nil {
		return nil
	}
	return VisibleReports(c.reports, state)
}

// Counts is CategoryCounts over the catalog.
func (c *Catalog) Counts(favorites FavoriteSet) Counts {
	if c == nil {
		return CategoryCounts(nil, favorites)
	}
	return CategoryCounts(c.reports, favorites)
}

// Favorites returns the starred descriptors that still exist, in catalog order.
func (c *Catalog) Favorites(favorites FavoriteSet) []ReportDescriptor {
	return c.Visible(FilterState{Category: CategoryFavorites, Favorites: favorites})
}
