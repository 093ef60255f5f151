package google

import (
	"fmt"
	"strconv"
	"strings"

	"subboard/internal/core"
)

// breakdownMetric marks labelled rows that hold money amounts rather than
// series points.
const breakdownMetric = "breakdown"

// parseMetrics converts a values matrix (as returned by Sheets API) into the
// payload of reportID. The header must contain Report, Metric, Label and
// Value. Rows without a label are scalar metrics; labelled rows form the
// series, or the breakdown when Metric is "breakdown". Unparseable values
// are skipped.
func parseMetrics(values [][]interface{}, reportID string) (core.ReportPayload, error) {
	p := core.ReportPayload{ReportID: reportID, Metrics: map[string]float64{}}
	if len(values) == 0 {
		return p, nil
	}
	headers := toStrings(values[0])
	colReport := indexOf(headers, "Report")
	colMetric := indexOf(headers, "Metric")
	colLabel := indexOf(headers, "Label")
	colValue := indexOf(headers, "Value")
	if colReport == -1 || colMetric == -1 || colLabel == -1 || colValue == -1 {
		return core.ReportPayload{}, fmt.Errorf("unexpected metrics header: got headers=%v", headers)
	}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if !strings.EqualFold(safeGet(row, colReport), reportID) {
			continue
		}
		metric := safeGet(row, colMetric)
		label := safeGet(row, colLabel)
		raw := safeGet(row, colValue)
		switch {
		case label == "":
			if metric == "" {
				continue
			}
			if v, ok := parseNumber(raw); ok {
				p.Metrics[metric] = v
			}
		case strings.EqualFold(metric, breakdownMetric):
			cents, err := core.ParseDecimalToCents(raw)
			if err != nil {
				continue
			}
			p.Breakdown = append(p.Breakdown, core.CategoryAmount{Name: label, Amount: core.Money{Cents: cents}})
		default:
			if v, ok := parseNumber(raw); ok {
				p.Series = append(p.Series, core.Point{Label: label, Value: v})
			}
		}
	}
	return p, nil
}

// parseNumber accepts "1234.5", "1,234.5" style and percentages ("2.5%" -> 0.025).
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return f, true
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
