package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subboard/internal/core"
	"subboard/internal/ports"

	_ "modernc.org/sqlite"
)

var (
	_ ports.FavoriteStore  = (*SQLiteRepository)(nil)
	_ ports.MetricsReader  = (*SQLiteRepository)(nil)
	_ ports.SnapshotWriter = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	if v, err := ReadSchemaVersion(dbPath); err == nil {
		slog.Debug("SQLite schema ready", "path", dbPath, "version", v.Version)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListFavorites implements ports.FavoriteStore
func (r *SQLiteRepository) ListFavorites(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT report_id FROM favorites WHERE session_id = ? ORDER BY report_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ToggleFavorite implements ports.FavoriteStore
func (r *SQLiteRepository) ToggleFavorite(ctx context.Context, sessionID, reportID string) (bool, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return false, core.ErrEmptyReportID
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE session_id = ? AND report_id = ?`, sessionID, reportID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	favorite := n == 0
	if favorite {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorites (session_id, report_id, created_at) VALUES (?, ?, ?)`,
			sessionID, reportID, r.now().UTC()); err != nil {
			return false, fmt.Errorf("insert favorite: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Favorite toggled",
		"session_id", sessionID,
		"report_id", reportID,
		"favorite", favorite)
	return favorite, nil
}

// SaveSnapshot implements ports.SnapshotWriter. A newer snapshot for the same
// report and query replaces the previous one.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, queryKey string, p core.ReportPayload) error {
	if strings.TrimSpace(p.ReportID) == "" {
		return core.ErrEmptyReportID
	}
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = r.now()
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO metric_snapshots (report_id, query_key, payload_json, generated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (report_id, query_key) DO UPDATE SET
			payload_json = excluded.payload_json,
			generated_at = excluded.generated_at`,
		p.ReportID, queryKey, string(body), p.GeneratedAt.UTC())
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", p.ReportID, err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"report_id", p.ReportID,
		"query_key", queryKey,
		"generated_at", p.GeneratedAt)
	return nil
}

// FetchReport implements ports.MetricsReader by serving the stored snapshot
// for the query. A report never refreshed for that query yields an empty
// payload.
func (r *SQLiteRepository) FetchReport(ctx context.Context, reportID string, q core.ReportQuery) (core.ReportPayload, error) {
	if err := q.Validate(); err != nil {
		return core.ReportPayload{}, err
	}
	var body string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload_json FROM metric_snapshots WHERE report_id = ? AND query_key = ?`,
		reportID, q.Key()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ReportPayload{ReportID: reportID}, nil
	}
	if err != nil {
		return core.ReportPayload{}, fmt.Errorf("read snapshot %s: %w", reportID, err)
	}
	var p core.ReportPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return core.ReportPayload{}, fmt.Errorf("decode snapshot %s: %w", reportID, err)
	}
	return p, nil
}

// SnapshotInfo describes one stored snapshot without its payload.
type SnapshotInfo struct {
	ReportID    string
	QueryKey    string
	GeneratedAt time.Time
}

// ListSnapshots returns stored snapshots, newest first.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT report_id, query_key, generated_at FROM metric_snapshots ORDER BY generated_at DESC, report_id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var s SnapshotInfo
		if err := rows.Scan(&s.ReportID, &s.QueryKey, &s.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots deletes snapshots generated before cutoff and returns how
// many were removed.
func (r *SQLiteRepository) PruneSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM metric_snapshots WHERE generated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.InfoContext(ctx, "Pruned old snapshots", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
