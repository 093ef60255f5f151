// Package http provides HTTP server and handler implementations.
//
// This file holds the helpers that turn query strings and form values into
// directory filters and report selections.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"subboard/internal/core"
)

// errInvalidParam marks malformed request parameters; it maps to 422.
var errInvalidParam = errors.New("invalid parameter")

const maxSearchLength = 200

// DirectoryParams is the search text and category chip of a directory request.
type DirectoryParams struct {
	Query    string
	Category string
}

// ParseDirectoryParams reads q and category from query or form values.
func ParseDirectoryParams(values url.Values) DirectoryParams {
	q := sanitizeInput(values.Get("q"))
	if len(q) > maxSearchLength {
		n := maxSearchLength
		for n > 0 && !utf8.RuneStart(q[n]) {
			n--
		}
		q = q[:n]
	}
	return DirectoryParams{
		Query:    q,
		Category: sanitizeInput(values.Get("category")),
	}
}

// ParseReportQuery reads products, units, from and to. Id lists may repeat the
// parameter or separate values with commas. Dates are YYYY-MM-DD; an empty
// bound is open.
func ParseReportQuery(values url.Values) (core.ReportQuery, error) {
	from, err := core.ParseDate(values.Get("from"))
	if err != nil {
		return core.ReportQuery{}, fmt.Errorf("%w: from: %v", errInvalidParam, err)
	}
	to, err := core.ParseDate(values.Get("to"))
	if err != nil {
		return core.ReportQuery{}, fmt.Errorf("%w: to: %v", errInvalidParam, err)
	}
	q := core.ReportQuery{
		ProductIDs:      splitIDs(values["products"]),
		BusinessUnitIDs: splitIDs(values["units"]),
		Range:           core.DateRange{From: from, To: to},
	}
	if err := q.Validate(); err != nil {
		return core.ReportQuery{}, err
	}
	return q.Normalized(), nil
}

// EncodeReportQuery is the inverse of ParseReportQuery, used to build partial URLs.
func EncodeReportQuery(q core.ReportQuery) string {
	v := url.Values{}
	if len(q.ProductIDs) > 0 {
		v.Set("products", strings.Join(q.ProductIDs, ","))
	}
	if len(q.BusinessUnitIDs) > 0 {
		v.Set("units", strings.Join(q.BusinessUnitIDs, ","))
	}
	if s := q.Range.From.String(); s != "" {
		v.Set("from", s)
	}
	if s := q.Range.To.String(); s != "" {
		v.Set("to", s)
	}
	return v.Encode()
}

func splitIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = sanitizeInput(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponse {
	if err := r.ParseForm(); err != nil {
		return ErrorResponse(http.StatusBadRequest, "Malformed request")
	}
	return nil
}
