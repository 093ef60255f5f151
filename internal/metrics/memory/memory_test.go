package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subboard/internal/core"
)

func TestMemoryStoreFetch(t *testing.T) {
	s := New([]core.ReportPayload{{ReportID: "mrr", Metrics: map[string]float64{"mrr_cents": 100}}})

	p, err := s.FetchReport(context.Background(), "mrr", core.ReportQuery{})
	if err != nil || p.Metric("mrr_cents") != 100 || p.GeneratedAt.IsZero() {
		t.Fatalf("unexpected payload: %+v err=%v", p, err)
	}
	p.Metrics["mrr_cents"] = 1
	again, _ := s.FetchReport(context.Background(), "mrr", core.ReportQuery{})
	if again.Metric("mrr_cents") != 100 {
		t.Fatalf("store mutated through returned payload")
	}

	empty, err := s.FetchReport(context.Background(), "unseeded", core.ReportQuery{})
	if err != nil || empty.ReportID != "unseeded" || len(empty.Metrics) != 0 {
		t.Fatalf("unexpected empty payload: %+v err=%v", empty, err)
	}

	bad := core.ReportQuery{Range: core.DateRange{From: core.NewDate(2025, 2, 1), To: core.NewDate(2025, 1, 1)}}
	if _, err := s.FetchReport(context.Background(), "mrr", bad); !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.FetchReport(ctx, "mrr", core.ReportQuery{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestMemoryStoreFavorites(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	if ids, _ := s.ListFavorites(ctx, "s1"); len(ids) != 0 {
		t.Fatalf("expected no favorites, got %v", ids)
	}
	if fav, err := s.ToggleFavorite(ctx, "s1", "mrr"); err != nil || !fav {
		t.Fatalf("toggle on: %v %v", fav, err)
	}
	if _, err := s.ToggleFavorite(ctx, "s1", "churn"); err != nil {
		t.Fatalf("toggle churn: %v", err)
	}
	ids, _ := s.ListFavorites(ctx, "s1")
	if len(ids) != 2 || ids[0] != "churn" || ids[1] != "mrr" {
		t.Fatalf("unexpected favorites %v", ids)
	}
	if other, _ := s.ListFavorites(ctx, "s2"); len(other) != 0 {
		t.Fatalf("favorites leaked across sessions: %v", other)
	}
	if fav, _ := s.ToggleFavorite(ctx, "s1", "mrr"); fav {
		t.Fatalf("expected toggle off")
	}
	if _, err := s.ToggleFavorite(ctx, "s1", " "); !errors.Is(err, core.ErrEmptyReportID) {
		t.Fatalf("expected ErrEmptyReportID, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> samples
	s := NewFromFiles(dir)
	if p, _ := s.FetchReport(context.Background(), "cac", core.ReportQuery{}); p.Metric("cac_cents") == 0 {
		t.Fatalf("expected sample payloads when seed file missing")
	}

	seed := "reports:\n  - report_id: churn\n    metrics:\n      churn_rate: 0.5\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_metrics.yaml"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	p, _ := s.FetchReport(context.Background(), "churn", core.ReportQuery{})
	if p.Metric("churn_rate") != 0.5 {
		t.Fatalf("seed not loaded: %+v", p)
	}
	if p, _ := s.FetchReport(context.Background(), "cac", core.ReportQuery{}); len(p.Metrics) != 0 {
		t.Fatalf("samples should not be mixed with seed data")
	}
}

func TestSaveSnapshot(t *testing.T) {
	s := New(nil)
	if err := s.SaveSnapshot(context.Background(), "k", core.ReportPayload{}); !errors.Is(err, core.ErrEmptyReportID) {
		t.Fatalf("expected ErrEmptyReportID, got %v", err)
	}
	_ = s.SaveSnapshot(context.Background(), "k", core.ReportPayload{ReportID: "arpu", Metrics: map[string]float64{"arpu_cents": 3755}})
	if p, _ := s.FetchReport(context.Background(), "arpu", core.ReportQuery{}); p.Metric("arpu_cents") != 3755 {
		t.Fatalf("snapshot not served: %+v", p)
	}
}
