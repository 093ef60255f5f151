// Package catalog holds the static list of report descriptors shown in the
// reports directory and the pure functions that filter, group and count them.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CategoryAll selects every report.
	CategoryAll = "All"
	// CategoryFavorites selects the reports starred in the current session.
	CategoryFavorites = "Favorites"
)

var (
	ErrEmptyID       = errors.New("empty report id")
	ErrDuplicateID   = errors.New("duplicate report id")
	ErrEmptyCategory = errors.New("empty report category")
	ErrReservedLabel = errors.New("category label is reserved")
)

// ReportDescriptor describes one analytics report (its metadata, not its data).
type ReportDescriptor struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Keywords    []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Color       string   `yaml:"color,omitempty" json:"color,omitempty"`
	IconColor   string   `yaml:"icon_color,omitempty" json:"icon_color,omitempty"`
}

// Catalog is an immutable, ordered set of report descriptors.
type Catalog struct {
	reports []ReportDescriptor
	byID    map[string]int
}

// New validates the descriptors and builds a catalog preserving their order.
func New(reports []ReportDescriptor) (*Catalog, error) {
	c := &Catalog{
		reports: make([]ReportDescriptor, 0, len(reports)),
		byID:    make(map[string]int, len(reports)),
	}
	for i, r := range reports {
		r.ID = strings.TrimSpace(r.ID)
		r.Category = strings.TrimSpace(r.Category)
		if r.ID == "" {
			return nil, fmt.Errorf("report #%d: %w", i+1, ErrEmptyID)
		}
		if _, ok := c.byID[r.ID]; ok {
			return nil, fmt.Errorf("report %q: %w", r.ID, ErrDuplicateID)
		}
		if r.Category == "" {
			return nil, fmt.Errorf("report %q: %w", r.ID, ErrEmptyCategory)
		}
		if r.Category == CategoryAll || r.Category == CategoryFavorites {
			return nil, fmt.Errorf("report %q category %q: %w", r.ID, r.Category, ErrReservedLabel)
		}
		r.Keywords = append([]string(nil), r.Keywords...)
		c.byID[r.ID] = len(c.reports)
		c.reports = append(c.reports, r)
	}
	return c, nil
}

// Reports returns a copy of the descriptors in catalog order.
func (c *Catalog) Reports() []ReportDescriptor {
	if c == nil {
		return nil
	}
	return append([]ReportDescriptor(nil), c.reports...)
}

// Len returns the number of reports.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.reports)
}

// Get looks up a descriptor by id.
func (c *Catalog) Get(id string) (ReportDescriptor, bool) {
	if c == nil {
		return ReportDescriptor{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return ReportDescriptor{}, false
	}
	return c.reports[i], true
}

// Has reports whether id is part of the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.reports {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// NormalizeCategory maps an incoming category label onto one the filter
// engine understands. Unknown labels fall back to CategoryAll.
func (c *Catalog) NormalizeCategory(label string) string {
	label = strings.TrimSpace(label)
	switch label {
	case CategoryAll, CategoryFavorites:
		return label
	case "":
		return CategoryAll
	}
	for _, cat := range c.Categories() {
		if cat == label {
			return label
		}
	}
	return CategoryAll
}
