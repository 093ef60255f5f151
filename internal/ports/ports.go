// Package ports declares the interfaces between the services and their
// storage, upstream and messaging adapters.
package ports

import (
	"context"

	"subboard/internal/core"
)

// Ports for outbound adapters.
type (
	// MetricsReader is the query layer every report view fetches from.
	MetricsReader interface {
		// FetchReport returns the pre-aggregated payload of one report for
		// the given selection. Missing fields are left empty.
		FetchReport(ctx context.Context, reportID string, q core.ReportQuery) (core.ReportPayload, error)
	}

	// FavoriteStore keeps starred report ids per browser session.
	FavoriteStore interface {
		ListFavorites(ctx context.Context, sessionID string) ([]string, error)
		// ToggleFavorite flips the report's status and returns the new one.
		ToggleFavorite(ctx context.Context, sessionID, reportID string) (favorite bool, err error)
	}

	// SnapshotWriter persists payloads fetched from the upstream source.
	SnapshotWriter interface {
		SaveSnapshot(ctx context.Context, queryKey string, p core.ReportPayload) error
	}
)
