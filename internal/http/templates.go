package http

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"subboard/internal/core"
	"subboard/internal/services"
	appweb "subboard/web"
)

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"join":        func(ids []string) string { return strings.Join(ids, ",") },
		"metricLabel": metricLabel,
		"metricValue": formatMetric,
		"money":       func(m core.Money) string { return m.String() },
		"reportQuery": EncodeReportQuery,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func (s *Server) render(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// metricLabel turns "mrr_cents" into "Mrr" and "growth_rate" into "Growth Rate".
func metricLabel(name string) string {
	name = strings.TrimSuffix(name, "_cents")
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// formatMetric renders a metric by its name suffix: _cents as money, _rate as
// a percentage, anything else as a grouped number.
func formatMetric(name string, v float64) string {
	switch {
	case strings.HasSuffix(name, "_cents"):
		return core.FormatCents(int64(math.Round(v)), "$")
	case strings.HasSuffix(name, "_rate"):
		return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return groupThousands(int64(v))
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

func groupThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type breakdownRow struct {
	Name   string
	Amount string
	Width  int
}

type reportPartial struct {
	services.ReportView
	QueryString string
	Total       string
	Breakdown   []breakdownRow
	SeriesMax   float64
}

// SeriesWidth scales v against the largest series value for the bar chart.
func (p reportPartial) SeriesWidth(v float64) int {
	return barWidth(v, p.SeriesMax)
}

func newReportPartial(v services.ReportView) reportPartial {
	p := reportPartial{ReportView: v, QueryString: EncodeReportQuery(v.Query)}
	if !v.Ready() {
		return p
	}

	var maxCents int64
	for _, c := range v.Payload.Breakdown {
		if a := abs(c.Amount.Cents); a > maxCents {
			maxCents = a
		}
	}
	for _, c := range v.Payload.Breakdown {
		p.Breakdown = append(p.Breakdown, breakdownRow{
			Name:   c.Name,
			Amount: c.Amount.String(),
			Width:  barWidth(float64(abs(c.Amount.Cents)), float64(maxCents)),
		})
	}
	if len(v.Payload.Breakdown) > 0 {
		p.Total = v.Payload.Total().String()
	}
	for _, pt := range v.Payload.Series {
		p.SeriesMax = math.Max(p.SeriesMax, math.Abs(pt.Value))
	}
	return p
}

// barWidth is the rounded percentage of v over limit, at least 2 so tiny values
// stay visible.
func barWidth(v, limit float64) int {
	if limit <= 0 || v <= 0 {
		return 0
	}
	w := int(math.Round(math.Abs(v) * 100 / limit))
	if w < 2 {
		w = 2
	}
	if w > 100 {
		w = 100
	}
	return w
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
