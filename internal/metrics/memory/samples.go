package memory

import "subboard/internal/core"

func money(cents int64) core.Money { return core.Money{Cents: cents} }

// SamplePayloads is demo data for local runs without a metrics source.
func SamplePayloads() []core.ReportPayload {
	return []core.ReportPayload{
		{
			ReportID: "active-subscribers",
			Metrics:  map[string]float64{"active": 12840, "trialing": 932, "paused": 211},
			Series: []core.Point{
				{Label: "Jan", Value: 11950}, {Label: "Feb", Value: 12210},
				{Label: "Mar", Value: 12480}, {Label: "Apr", Value: 12840},
			},
		},
		{
			ReportID: "new-subscribers",
			Metrics:  map[string]float64{"new": 1184, "trial_conversions": 402, "conversion_rate": 0.43},
		},
		{
			ReportID: "churn",
			Metrics:  map[string]float64{"churned": 318, "churn_rate": 0.025, "voluntary": 241, "involuntary": 77},
			Series: []core.Point{
				{Label: "Jan", Value: 0.029}, {Label: "Feb", Value: 0.027},
				{Label: "Mar", Value: 0.026}, {Label: "Apr", Value: 0.025},
			},
		},
		{
			ReportID: "mrr",
			Metrics:  map[string]float64{"mrr_cents": 48215000, "growth_rate": 0.031},
			Breakdown: []core.CategoryAmount{
				{Name: "New", Amount: money(2140000)},
				{Name: "Expansion", Amount: money(815000)},
				{Name: "Contraction", Amount: money(-312000)},
				{Name: "Churned", Amount: money(-1204000)},
			},
		},
		{
			ReportID: "revenue-by-product",
			Breakdown: []core.CategoryAmount{
				{Name: "Basic", Amount: money(9120000)},
				{Name: "Pro", Amount: money(27430000)},
				{Name: "Enterprise", Amount: money(11665000)},
			},
		},
		{
			ReportID: "cac",
			Metrics:  map[string]float64{"cac_cents": 4210, "payback_months": 5.4},
			Breakdown: []core.CategoryAmount{
				{Name: "Paid search", Amount: money(5120)},
				{Name: "Social", Amount: money(3890)},
				{Name: "Referral", Amount: money(1450)},
			},
		},
		{
			ReportID: "expiration-forecast",
			Metrics:  map[string]float64{"expiring": 2260, "auto_renewal_rate": 0.7},
			Series: []core.Point{
				{Label: "May", Value: 780}, {Label: "Jun", Value: 702}, {Label: "Jul", Value: 778},
			},
		},
	}
}
