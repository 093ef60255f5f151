package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"subboard/internal/amqp"
	"subboard/internal/catalog"
	"subboard/internal/core"
	"subboard/internal/ports"
)

// Pruner drops snapshots older than a cutoff.
type Pruner interface {
	PruneSnapshots(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config tunes the refresh loop.
type Config struct {
	// Interval between full refreshes; zero disables the ticker.
	Interval time.Duration
	// Concurrency caps parallel upstream fetches during RefreshAll (default 4).
	Concurrency int
	// Retention is how long snapshots are kept; zero keeps them forever.
	Retention time.Duration
}

// SnapshotWorker copies payloads from the upstream query layer into the
// snapshot store the dashboard reads from.
type SnapshotWorker struct {
	upstream ports.MetricsReader
	sink     ports.SnapshotWriter
	catalog  *catalog.Catalog
	config   Config
	// onSaved runs after each snapshot, e.g. to drop cached payloads.
	onSaved func(reportID string)

	refreshed atomic.Int64
	failed    atomic.Int64
}

func NewSnapshotWorker(upstream ports.MetricsReader, sink ports.SnapshotWriter, cat *catalog.Catalog, cfg Config) *SnapshotWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &SnapshotWorker{upstream: upstream, sink: sink, catalog: cat, config: cfg}
}

// OnSaved registers a callback run after every stored snapshot.
func (w *SnapshotWorker) OnSaved(fn func(reportID string)) {
	w.onSaved = fn
}

// HandleRefresh processes one refresh message from AMQP. An empty report id
// refreshes the whole catalog.
func (w *SnapshotWorker) HandleRefresh(ctx context.Context, msg *amqp.MetricsRefreshMessage) error {
	q, err := msg.Query()
	if err != nil {
		// A bad selection never becomes valid; drop it instead of requeueing.
		slog.WarnContext(ctx, "Ignoring refresh message with invalid query",
			"message_id", msg.MessageID,
			"error", err)
		return nil
	}
	id := strings.TrimSpace(msg.ReportID)
	if id == "" {
		return w.RefreshAll(ctx, q)
	}
	if !w.catalog.Has(id) {
		slog.WarnContext(ctx, "Ignoring refresh for unknown report",
			"message_id", msg.MessageID,
			"report_id", id)
		return nil
	}
	return w.refresh(ctx, id, q)
}

// RefreshAll refreshes every catalog report for q. Failures of single
// reports are collected; the rest still get refreshed.
func (w *SnapshotWorker) RefreshAll(ctx context.Context, q core.ReportQuery) error {
	start := time.Now()
	reports := w.catalog.Reports()
	errs := make([]error, len(reports))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Concurrency)
	for i, r := range reports {
		g.Go(func() error {
			errs[i] = w.refresh(gctx, r.ID, q)
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	slog.InfoContext(ctx, "Refresh cycle completed",
		"reports", len(reports),
		"query_key", q.Key(),
		"duration_ms", time.Since(start).Milliseconds(),
		"success", err == nil)
	return err
}

func (w *SnapshotWorker) refresh(ctx context.Context, reportID string, q core.ReportQuery) error {
	p, err := w.upstream.FetchReport(ctx, reportID, q)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("fetch %s: %w", reportID, err)
	}
	p.ReportID = reportID
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = time.Now()
	}
	if err := w.sink.SaveSnapshot(ctx, q.Key(), p); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("save %s: %w", reportID, err)
	}
	w.refreshed.Add(1)
	if w.onSaved != nil {
		w.onSaved(reportID)
	}
	return nil
}

// Prune removes expired snapshots when the sink supports it.
func (w *SnapshotWorker) Prune(ctx context.Context) (int64, error) {
	p, ok := w.sink.(Pruner)
	if !ok || w.config.Retention <= 0 {
		return 0, nil
	}
	return p.PruneSnapshots(ctx, time.Now().Add(-w.config.Retention))
}

// Run refreshes the default selection every Interval until ctx ends. The
// first cycle runs immediately.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		w.cycle(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *SnapshotWorker) cycle(ctx context.Context) {
	if err := w.RefreshAll(ctx, core.ReportQuery{}); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Periodic refresh had failures", "error", err)
	}
	if _, err := w.Prune(ctx); err != nil {
		slog.ErrorContext(ctx, "Snapshot pruning failed", "error", err)
	}
}

// Stats returns how many snapshots were stored and how many refreshes failed.
func (w *SnapshotWorker) Stats() (refreshed, failed int64) {
	return w.refreshed.Load(), w.failed.Load()
}
