package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"subboard/internal/amqp"
	"subboard/internal/catalog"
	"subboard/internal/core"
	"subboard/internal/metrics/memory"
)

type recordingSink struct {
	mu     sync.Mutex
	saved  map[string]core.ReportPayload
	err    error
	pruned time.Time
}

func (s *recordingSink) SaveSnapshot(_ context.Context, queryKey string, p core.ReportPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = map[string]core.ReportPayload{}
	}
	s.saved[p.ReportID+"|"+queryKey] = p
	return nil
}

func (s *recordingSink) PruneSnapshots(_ context.Context, cutoff time.Time) (int64, error) {
	s.pruned = cutoff
	return 1, nil
}

type failingReader struct{ failID string }

func (f failingReader) FetchReport(_ context.Context, id string, _ core.ReportQuery) (core.ReportPayload, error) {
	if id == f.failID {
		return core.ReportPayload{}, errors.New("sheet unavailable")
	}
	return core.ReportPayload{ReportID: id}, nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.ReportDescriptor{
		{ID: "mrr", Title: "MRR", Category: "Revenue"},
		{ID: "churn", Title: "Churn", Category: "Retention"},
	})
	require.NoError(t, err)
	return cat
}

func TestSnapshotWorker_HandleRefresh(t *testing.T) {
	sink := &recordingSink{}
	upstream := memory.New([]core.ReportPayload{{ReportID: "mrr", Metrics: map[string]float64{"mrr_cents": 7}}})
	w := NewSnapshotWorker(upstream, sink, testCatalog(t), Config{})
	var saved []string
	w.OnSaved(func(id string) { saved = append(saved, id) })

	q := core.ReportQuery{ProductIDs: []string{"pro"}}
	require.NoError(t, w.HandleRefresh(context.Background(), amqp.NewMetricsRefreshMessage("mrr", q)))

	p, ok := sink.saved["mrr|"+q.Key()]
	require.True(t, ok)
	require.Equal(t, 7.0, p.Metric("mrr_cents"))
	require.False(t, p.GeneratedAt.IsZero())
	require.Equal(t, []string{"mrr"}, saved)

	// unknown reports and invalid selections are dropped, not retried
	require.NoError(t, w.HandleRefresh(context.Background(), amqp.NewMetricsRefreshMessage("nope", q)))
	require.NoError(t, w.HandleRefresh(context.Background(), &amqp.MetricsRefreshMessage{ReportID: "mrr", From: "2025-02-01", To: "2025-01-01"}))
	require.Len(t, sink.saved, 1)
}

func TestSnapshotWorker_RefreshAllCollectsFailures(t *testing.T) {
	sink := &recordingSink{}
	w := NewSnapshotWorker(failingReader{failID: "churn"}, sink, testCatalog(t), Config{Concurrency: 1})

	err := w.HandleRefresh(context.Background(), amqp.NewMetricsRefreshMessage("", core.ReportQuery{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "churn")
	require.Contains(t, sink.saved, "mrr|"+core.ReportQuery{}.Key())

	refreshed, failed := w.Stats()
	require.Equal(t, int64(1), refreshed)
	require.Equal(t, int64(1), failed)
}

func TestSnapshotWorker_SaveErrorPropagates(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	w := NewSnapshotWorker(memory.New(nil), sink, testCatalog(t), Config{})
	err := w.HandleRefresh(context.Background(), amqp.NewMetricsRefreshMessage("mrr", core.ReportQuery{}))
	require.ErrorContains(t, err, "disk full")
}

func TestSnapshotWorker_Prune(t *testing.T) {
	sink := &recordingSink{}
	w := NewSnapshotWorker(memory.New(nil), sink, testCatalog(t), Config{})
	n, err := w.Prune(context.Background())
	require.NoError(t, err)
	require.Zero(t, n, "no retention configured")

	w = NewSnapshotWorker(memory.New(nil), sink, testCatalog(t), Config{Retention: 24 * time.Hour})
	n, err = w.Prune(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.WithinDuration(t, time.Now().Add(-24*time.Hour), sink.pruned, time.Minute)
}

func TestSnapshotWorker_RunStopsOnCancel(t *testing.T) {
	sink := &recordingSink{}
	w := NewSnapshotWorker(memory.New(nil), sink, testCatalog(t), Config{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		refreshed, _ := w.Stats()
		return refreshed == 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
