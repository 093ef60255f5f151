package backend

import (
	"context"
	"fmt"
	"log/slog"

	"subboard/internal/core"
	gmetrics "subboard/internal/metrics/google"
	"subboard/internal/metrics/memory"
	"subboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// sheetsReader is replaceable in tests.
	sheetsReader func(ctx context.Context, config Config) (*gmetrics.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger, sheetsReader: newSheetsReader}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend:   repo,
		Snapshots: repo,
		Ping:      repo.Ping,
		Cleanup:   repo.Close,
	}, nil
}

// sheetsBackend reads payloads from the spreadsheet and keeps favorites in memory.
type sheetsBackend struct {
	*gmetrics.Client
	*memory.Store
}

func (b sheetsBackend) FetchReport(ctx context.Context, reportID string, q core.ReportQuery) (core.ReportPayload, error) {
	return b.Client.FetchReport(ctx, reportID, q)
}

func newSheetsReader(ctx context.Context, config Config) (*gmetrics.Client, error) {
	return gmetrics.New(ctx, config.GoogleSpreadsheetID, config.GoogleMetricsSheetName)
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := f.sheetsReader(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleMetricsSheetName)

	return &BackendResult{
		Backend: sheetsBackend{Client: cli, Store: memory.New(nil)},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.NewFromFiles(config.DataDirectory)

	f.logger.Info("Initialized memory backend", "data_directory", config.DataDirectory)

	return &BackendResult{
		Backend:   store,
		Snapshots: store,
	}, nil
}
