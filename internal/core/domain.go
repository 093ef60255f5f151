package core

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	// DateRange is an inclusive period. A zero range means "all time".
	DateRange struct {
		From Date
		To   Date
	}

	// ReportQuery is the filter tuple every report view fetches with: the
	// selected products, the selected business units and an optional range.
	ReportQuery struct {
		ProductIDs      []string
		BusinessUnitIDs []string
		Range           DateRange
	}
)

var (
	ErrInvalidRange  = errors.New("invalid date range")
	ErrUnknownReport = errors.New("unknown report")
	ErrEmptyReportID = errors.New("empty report id")
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" when zero.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From.Time) {
		return ErrInvalidRange
	}
	return nil
}

func (q ReportQuery) Validate() error {
	return q.Range.Validate()
}

// Normalized returns a copy with trimmed, deduplicated and sorted ids so that
// equal selections produce equal cache keys regardless of click order.
func (q ReportQuery) Normalized() ReportQuery {
	return ReportQuery{
		ProductIDs:      normalizeIDs(q.ProductIDs),
		BusinessUnitIDs: normalizeIDs(q.BusinessUnitIDs),
		Range:           q.Range,
	}
}

// Key is the composite cache key of the query.
func (q ReportQuery) Key() string {
	n := q.Normalized()
	var b strings.Builder
	b.WriteString("p=")
	b.WriteString(joinEscaped(n.ProductIDs))
	b.WriteString(";u=")
	b.WriteString(joinEscaped(n.BusinessUnitIDs))
	b.WriteString(";r=")
	b.WriteString(n.Range.From.String())
	b.WriteString("..")
	b.WriteString(n.Range.To.String())
	return b.String()
}

// joinEscaped query-escapes each id so separators inside an id cannot
// collide with the ones between ids.
func joinEscaped(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = url.QueryEscape(id)
	}
	return strings.Join(parts, ",")
}

func normalizeIDs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
