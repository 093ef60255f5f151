package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"subboard/internal/catalog"
	"subboard/internal/core"
	"subboard/internal/ports"
)

var (
	_ ports.MetricsReader  = (*Store)(nil)
	_ ports.FavoriteStore  = (*Store)(nil)
	_ ports.SnapshotWriter = (*Store)(nil)
)

// Store serves seeded payloads and keeps favorites in process memory.
type Store struct {
	mu        sync.Mutex
	payloads  map[string]core.ReportPayload
	favorites map[string]catalog.FavoriteSet
	now       func() time.Time
}

// seedFile is the layout of data/seed_metrics.yaml.
type seedFile struct {
	Reports []core.ReportPayload `yaml:"reports"`
}

func New(payloads []core.ReportPayload) *Store {
	s := &Store{
		payloads:  make(map[string]core.ReportPayload, len(payloads)),
		favorites: make(map[string]catalog.FavoriteSet),
		now:       time.Now,
	}
	for _, p := range payloads {
		id := strings.TrimSpace(p.ReportID)
		if id == "" {
			continue
		}
		p.ReportID = id
		s.payloads[id] = p
	}
	return s
}

// NewFromFiles seeds the store from base/seed_metrics.yaml, falling back to
// the built-in sample payloads when the file is missing or unreadable.
func NewFromFiles(base string) *Store {
	payloads, err := readSeed(filepath.Join(base, "seed_metrics.yaml"))
	if err != nil || len(payloads) == 0 {
		payloads = SamplePayloads()
	}
	return New(payloads)
}

func readSeed(path string) ([]core.ReportPayload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.Reports, nil
}

// FetchReport returns a copy of the seeded payload. Reports without seed data
// come back empty so the view degrades to zero values.
func (s *Store) FetchReport(ctx context.Context, reportID string, q core.ReportQuery) (core.ReportPayload, error) {
	if err := ctx.Err(); err != nil {
		return core.ReportPayload{}, err
	}
	if err := q.Validate(); err != nil {
		return core.ReportPayload{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payloads[reportID]
	if !ok {
		return core.ReportPayload{ReportID: reportID, GeneratedAt: s.now()}, nil
	}
	out := p
	out.Metrics = core.WithDefaults(p.Metrics, nil)
	out.Series = append([]core.Point(nil), p.Series...)
	out.Breakdown = append([]core.CategoryAmount(nil), p.Breakdown...)
	if out.GeneratedAt.IsZero() {
		out.GeneratedAt = s.now()
	}
	return out, nil
}

// ListFavorites returns the session's favorites in lexical order.
func (s *Store) ListFavorites(_ context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites[sessionID].IDs(), nil
}

// ToggleFavorite flips reportID for the session.
func (s *Store) ToggleFavorite(_ context.Context, sessionID, reportID string) (bool, error) {
	if strings.TrimSpace(reportID) == "" {
		return false, core.ErrEmptyReportID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.favorites[sessionID]
	if !ok {
		set = catalog.NewFavoriteSet()
		s.favorites[sessionID] = set
	}
	return set.Toggle(reportID), nil
}

// SaveSnapshot replaces the payload served for p.ReportID.
func (s *Store) SaveSnapshot(_ context.Context, _ string, p core.ReportPayload) error {
	if strings.TrimSpace(p.ReportID) == "" {
		return core.ErrEmptyReportID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[p.ReportID] = p
	return nil
}
