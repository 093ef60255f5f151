package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subboard/internal/config"
	"subboard/internal/storage"
)

type snapshotRow struct {
	Report      string `json:"report" yaml:"report"`
	QueryKey    string `json:"query_key" yaml:"query_key"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
}

type snapshotsOutput struct {
	Database      string        `json:"database" yaml:"database"`
	SchemaVersion uint          `json:"schema_version" yaml:"schema_version"`
	Count         int           `json:"count" yaml:"count"`
	Snapshots     []snapshotRow `json:"snapshots" yaml:"snapshots"`
}

type pruneOutput struct {
	Database string `json:"database" yaml:"database"`
	Cutoff   string `json:"cutoff" yaml:"cutoff"`
	Removed  int64  `json:"removed" yaml:"removed"`
}

func newSnapshotsCommand(opts *RootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect metric snapshots stored by the worker",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database (default: SQLITE_DB_PATH)")

	open := func() (*storage.SQLiteRepository, string, error) {
		path := dbPath
		if path == "" {
			path = config.Load().SQLiteDBPath
		}
		repo, err := storage.NewSQLiteRepository(path)
		if err != nil {
			return nil, path, fmt.Errorf("open %s: %w", path, err)
		}
		return repo, path, nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, path, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx, cancel := withTimeout(cmd, 10*time.Second)
			defer cancel()
			infos, err := repo.ListSnapshots(ctx)
			if err != nil {
				return err
			}
			version, err := storage.ReadSchemaVersion(path)
			if err != nil {
				return err
			}

			out := snapshotsOutput{
				Database:      path,
				SchemaVersion: version.Version,
				Count:         len(infos),
				Snapshots:     make([]snapshotRow, 0, len(infos)),
			}
			for _, s := range infos {
				out.Snapshots = append(out.Snapshots, snapshotRow{
					Report:      s.ReportID,
					QueryKey:    s.QueryKey,
					GeneratedAt: s.GeneratedAt.UTC().Format(time.RFC3339),
				})
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, out)
		},
	}

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete snapshots older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			repo, path, err := open()
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx, cancel := withTimeout(cmd, 30*time.Second)
			defer cancel()
			cutoff := time.Now().Add(-olderThan).UTC()
			n, err := repo.PruneSnapshots(ctx, cutoff)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, pruneOutput{
				Database: path,
				Cutoff:   cutoff.Format(time.RFC3339),
				Removed:  n,
			})
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age beyond which snapshots are removed")

	cmd.AddCommand(list, prune)
	return cmd
}
