package backend

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"subboard/internal/config"
	"subboard/internal/core"
	gmetrics "subboard/internal/metrics/google"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if bc.Type != SQLiteBackend || bc.SQLiteDBPath != "x.db" || bc.DataDirectory != "data" {
		t.Errorf("unexpected backend config %+v", bc)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without spreadsheet", Config{Type: SheetsBackend}, true},
		{"sheets", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, false},
		{"unknown", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 3 || got[0] != "sqlite" || got[1] != "sheets" || got[2] != "memory" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}

func TestFactory_Memory(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if res.Snapshots == nil {
		t.Error("memory backend should accept snapshots")
	}
	p, err := res.Backend.FetchReport(context.Background(), "mrr", core.ReportQuery{})
	if err != nil || p.Metric("mrr_cents") == 0 {
		t.Errorf("expected sample payload, got %+v err=%v", p, err)
	}
}

func TestFactory_SQLite(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "subboard.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if err := res.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	fav, err := res.Backend.ToggleFavorite(context.Background(), "s1", "mrr")
	if err != nil || !fav {
		t.Errorf("ToggleFavorite() = %v, %v", fav, err)
	}
}

func TestFactory_SheetsError(t *testing.T) {
	f := &DefaultFactory{
		logger: slog.Default(),
		sheetsReader: func(context.Context, Config) (*gmetrics.Client, error) {
			return nil, errors.New("no credentials")
		},
	}
	_, err := f.CreateBackend(context.Background(), Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"})
	if err == nil {
		t.Fatal("expected error when the sheets client cannot be created")
	}
}
