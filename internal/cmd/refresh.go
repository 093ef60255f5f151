package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subboard/internal/config"
	"subboard/internal/core"
)

type refreshOutput struct {
	Report   string `json:"report" yaml:"report"`
	QueryKey string `json:"query_key" yaml:"query_key"`
	Queued   bool   `json:"queued" yaml:"queued"`
}

func newRefreshCommand(opts *RootOptions) *cobra.Command {
	var (
		reportID string
		products []string
		units    []string
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask the worker to refresh snapshots (all reports when --report is empty)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportID != "" {
				cat, err := opts.loadCatalog()
				if err != nil {
					return err
				}
				if !cat.Has(reportID) {
					return fmt.Errorf("%w: %s", core.ErrUnknownReport, reportID)
				}
			}
			fromDate, err := core.ParseDate(from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			toDate, err := core.ParseDate(to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			q := core.ReportQuery{
				ProductIDs:      products,
				BusinessUnitIDs: units,
				Range:           core.DateRange{From: fromDate, To: toDate},
			}
			if err := q.Validate(); err != nil {
				return err
			}
			q = q.Normalized()

			pub, err := opts.NewPublisher(config.Load())
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer pub.Close()

			ctx, cancel := withTimeout(cmd, 10*time.Second)
			defer cancel()
			if err := pub.PublishMetricsRefresh(ctx, reportID, q); err != nil {
				return fmt.Errorf("publish refresh: %w", err)
			}

			target := reportID
			if target == "" {
				target = "(all)"
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, refreshOutput{Report: target, QueryKey: q.Key(), Queued: true})
		},
	}
	cmd.Flags().StringVarP(&reportID, "report", "r", "", "report id")
	cmd.Flags().StringSliceVar(&products, "products", nil, "product ids")
	cmd.Flags().StringSliceVar(&units, "units", nil, "business unit ids")
	cmd.Flags().StringVar(&from, "from", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "range end (YYYY-MM-DD)")
	return cmd
}
