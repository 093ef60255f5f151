package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"subboard/internal/cache"
	"subboard/internal/catalog"
	"subboard/internal/core"
	applog "subboard/internal/log"
	"subboard/internal/ports"
)

const (
	// DefaultFetchTimeout bounds one upstream fetch.
	DefaultFetchTimeout = 7 * time.Second
	// fetchManyLimit caps concurrent upstream fetches per FetchMany call.
	fetchManyLimit = 4
)

// MetricDefaults lists, per report, the metrics every view reads. Missing
// ones are filled with zero so partial payloads still render.
var MetricDefaults = map[string]map[string]float64{
	"active-subscribers":  {"active": 0, "trialing": 0, "paused": 0},
	"new-subscribers":     {"new": 0, "trial_conversions": 0, "conversion_rate": 0},
	"churn":               {"churned": 0, "churn_rate": 0, "voluntary": 0, "involuntary": 0},
	"mrr":                 {"mrr_cents": 0, "growth_rate": 0},
	"arpu":                {"arpu_cents": 0},
	"failed-payments":     {"failed": 0, "recovered": 0, "recovery_rate": 0},
	"cohort-retention":    {"month_1": 0, "month_3": 0, "month_6": 0},
	"renewal-rate":        {"renewal_rate": 0},
	"cac":                 {"cac_cents": 0, "payback_months": 0},
	"expiration-forecast": {"expiring": 0, "auto_renewal_rate": 0},
}

// ReportStats is a snapshot of the service counters.
type ReportStats struct {
	Hits   int64 `json:"hits" yaml:"hits"`
	Misses int64 `json:"misses" yaml:"misses"`
	Errors int64 `json:"errors" yaml:"errors"`
	Cached int   `json:"cached" yaml:"cached"`
}

// ReportService fetches report payloads through the query layer, caching them
// per report and selection.
type ReportService struct {
	reader   ports.MetricsReader
	catalog  *catalog.Catalog
	cache    cache.Cache[core.ReportPayload]
	group    singleflight.Group
	timeout  time.Duration
	defaults map[string]map[string]float64
	logger   *applog.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

type ReportServiceOption func(*ReportService)

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) ReportServiceOption {
	return func(s *ReportService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMetricDefaults replaces MetricDefaults.
func WithMetricDefaults(defaults map[string]map[string]float64) ReportServiceOption {
	return func(s *ReportService) { s.defaults = defaults }
}

func WithReportLogger(l *applog.Logger) ReportServiceOption {
	return func(s *ReportService) {
		if l != nil {
			s.logger = l.WithComponent(applog.ComponentReports)
		}
	}
}

// NewReportService builds the service. A nil cache disables caching.
func NewReportService(reader ports.MetricsReader, cat *catalog.Catalog, c cache.Cache[core.ReportPayload], opts ...ReportServiceOption) *ReportService {
	s := &ReportService{
		reader:   reader,
		catalog:  cat,
		cache:    c,
		timeout:  DefaultFetchTimeout,
		defaults: MetricDefaults,
		logger:   applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentReports),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(reportID string, q core.ReportQuery) string {
	return keyPrefix(reportID) + q.Key()
}

// keyPrefix escapes the report id so an id holding "|" cannot reach into
// another report's entries.
func keyPrefix(reportID string) string {
	return url.QueryEscape(strings.TrimSpace(reportID)) + "|"
}

// Fetch returns the payload of reportID for the selection q with defaults
// applied. Unknown ids fail with core.ErrUnknownReport and inverted ranges
// with core.ErrInvalidRange. Concurrent misses for the same key share one
// upstream call.
func (s *ReportService) Fetch(ctx context.Context, reportID string, q core.ReportQuery) (core.ReportPayload, error) {
	id := strings.TrimSpace(reportID)
	if id == "" {
		return core.ReportPayload{}, core.ErrEmptyReportID
	}
	if !s.catalog.Has(id) {
		return core.ReportPayload{}, fmt.Errorf("%w: %s", core.ErrUnknownReport, id)
	}
	if err := q.Validate(); err != nil {
		return core.ReportPayload{}, err
	}
	q = q.Normalized()
	key := cacheKey(id, q)

	if s.cache != nil {
		if p, ok := s.cache.Get(key); ok {
			s.hits.Add(1)
			return clonePayload(p), nil
		}
	}
	s.misses.Add(1)

	v, err, shared := s.group.Do(key, func() (any, error) {
		// The shared call must not die with whichever caller started it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		start := time.Now()
		p, err := s.reader.FetchReport(fetchCtx, id, q)
		if err != nil {
			s.failures.Add(1)
			return nil, fmt.Errorf("fetch report %s: %w", id, err)
		}
		p.ReportID = id
		p = p.ApplyDefaults(s.defaults[id])
		if s.cache != nil {
			s.cache.Set(key, p)
		}
		s.logger.DebugContext(ctx, "Report fetched",
			applog.FieldReportID, id,
			applog.FieldQueryKey, q.Key(),
			applog.FieldDuration, time.Since(start).Milliseconds())
		return p, nil
	})
	if err != nil {
		return core.ReportPayload{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Report fetch shared", applog.FieldReportID, id)
	}
	return clonePayload(v.(core.ReportPayload)), nil
}

// FetchMany fetches several reports for the same selection concurrently. The
// result follows the order of ids. The first error cancels the rest.
func (s *ReportService) FetchMany(ctx context.Context, ids []string, q core.ReportQuery) ([]core.ReportPayload, error) {
	out := make([]core.ReportPayload, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchManyLimit)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.Fetch(gctx, id, q)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops every cached selection of reportID and returns how many
// entries were removed.
func (s *ReportService) Invalidate(reportID string) int {
	if s.cache == nil {
		return 0
	}
	n := s.cache.DeletePrefix(keyPrefix(reportID))
	if n > 0 {
		s.logger.Debug("Report cache invalidated", applog.FieldReportID, reportID, "entries", n)
	}
	return n
}

func (s *ReportService) Stats() ReportStats {
	st := ReportStats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Errors: s.failures.Load(),
	}
	if s.cache != nil {
		st.Cached = s.cache.Size()
	}
	return st
}

// Catalog returns the catalog the service validates ids against.
func (s *ReportService) Catalog() *catalog.Catalog { return s.catalog }

// IsClientError reports whether err comes from bad input rather than the
// query layer.
func IsClientError(err error) bool {
	return errors.Is(err, core.ErrUnknownReport) ||
		errors.Is(err, core.ErrEmptyReportID) ||
		errors.Is(err, core.ErrInvalidRange)
}

func clonePayload(p core.ReportPayload) core.ReportPayload {
	out := p
	if p.Metrics != nil {
		out.Metrics = core.WithDefaults(p.Metrics, nil)
	}
	if p.Series != nil {
		out.Series = append([]core.Point{}, p.Series...)
	}
	if p.Breakdown != nil {
		out.Breakdown = append([]core.CategoryAmount{}, p.Breakdown...)
	}
	return out
}
