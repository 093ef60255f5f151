// Package cmd implements the subboardctl command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"subboard/internal/amqp"
	"subboard/internal/catalog"
	"subboard/internal/config"
	"subboard/internal/core"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"yaml", "json"}

// RefreshPublisher sends refresh requests to the worker.
type RefreshPublisher interface {
	PublishMetricsRefresh(ctx context.Context, reportID string, q core.ReportQuery) error
	Close() error
}

// RootOptions holds global flags and the seams tests replace.
type RootOptions struct {
	Format  string
	Catalog string

	// NewPublisher connects to the broker for refresh.
	NewPublisher func(cfg *config.Config) (RefreshPublisher, error)
}

func defaultPublisher(cfg *config.Config) (RefreshPublisher, error) {
	if !cfg.AMQPEnabled() {
		return nil, fmt.Errorf("AMQP_URL is not set")
	}
	return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
}

// NewRootCommand creates the root command for subboardctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{NewPublisher: defaultPublisher})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subboardctl",
		Short: "Inspect the report catalog, trigger metric refreshes and manage snapshots",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "yaml", "output format (yaml|json)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", os.Getenv("CATALOG_PATH"), "catalog file (default: built-in catalog)")

	cmd.AddCommand(newReportsCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))
	cmd.AddCommand(newRefreshCommand(opts))
	cmd.AddCommand(newSnapshotsCommand(opts))
	return cmd
}

func (o *RootOptions) loadCatalog() (*catalog.Catalog, error) {
	return catalog.LoadOrDefault(o.Catalog)
}

func withTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
