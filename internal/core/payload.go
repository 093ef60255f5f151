package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name" yaml:"name"`
	Amount Money  `json:"amount" yaml:"amount"`
}

// Point is one sample of a time or label series.
type Point struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// ReportPayload is the pre-aggregated data of one report as returned by the
// query layer. Any field may be missing; readers go through Metric and
// ApplyDefaults rather than indexing directly.
type ReportPayload struct {
	ReportID    string             `json:"report_id" yaml:"report_id"`
	Metrics     map[string]float64 `json:"metrics" yaml:"metrics"`
	Series      []Point            `json:"series,omitempty" yaml:"series,omitempty"`
	Breakdown   []CategoryAmount   `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
}

// Metric returns the named metric, zero when the backend did not send it.
func (p ReportPayload) Metric(name string) float64 {
	return p.Metrics[name]
}

// ApplyDefaults returns a copy of p whose missing metrics are taken from
// defaults. Present metrics are never overwritten.
func (p ReportPayload) ApplyDefaults(defaults map[string]float64) ReportPayload {
	out := p
	out.Metrics = WithDefaults(p.Metrics, defaults)
	if out.Series == nil {
		out.Series = []Point{}
	}
	if out.Breakdown == nil {
		out.Breakdown = []CategoryAmount{}
	}
	return out
}

// Total sums the breakdown.
func (p ReportPayload) Total() Money {
	var cents int64
	for _, b := range p.Breakdown {
		cents += b.Amount.Cents
	}
	return Money{Cents: cents}
}

// WithDefaults merges defaults under m: keys absent from m take the default
// value. Neither input is modified.
func WithDefaults[K comparable, V any](m, defaults map[K]V) map[K]V {
	out := make(map[K]V, len(m)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range m {
		out[k] = v
	}
	return out
}
