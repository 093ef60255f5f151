package cmd

import (
	"github.com/spf13/cobra"

	"subboard/internal/catalog"
)

type reportRow struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Favorite bool   `json:"favorite,omitempty" yaml:"favorite,omitempty"`
}

type reportGroup struct {
	Category string      `json:"category" yaml:"category"`
	Reports  []reportRow `json:"reports" yaml:"reports"`
}

type listOutput struct {
	Query    string        `json:"query,omitempty" yaml:"query,omitempty"`
	Category string        `json:"category" yaml:"category"`
	Visible  int           `json:"visible" yaml:"visible"`
	Total    int           `json:"total" yaml:"total"`
	Groups   []reportGroup `json:"groups" yaml:"groups"`
}

func newReportsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Query the report directory",
	}
	cmd.AddCommand(newReportsListCommand(opts))
	cmd.AddCommand(newReportsCountsCommand(opts))
	return cmd
}

func newReportsListCommand(opts *RootOptions) *cobra.Command {
	var (
		query     string
		category  string
		favorites []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports grouped by category, as the directory shows them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			state := catalog.NewFilterState(catalog.NewFavoriteSet(favorites...))
			state.SetQuery(query)
			state.SetCategory(cat.NormalizeCategory(category))

			visible := cat.Visible(state)
			out := listOutput{
				Query:    state.Query,
				Category: state.Category,
				Visible:  len(visible),
				Total:    cat.Len(),
				Groups:   []reportGroup{},
			}
			for _, g := range catalog.GroupByCategory(visible) {
				rg := reportGroup{Category: g.Category}
				for _, r := range g.Reports {
					rg.Reports = append(rg.Reports, reportRow{ID: r.ID, Title: r.Title, Favorite: state.Favorites.Has(r.ID)})
				}
				out.Groups = append(out.Groups, rg)
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, out)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "search text")
	cmd.Flags().StringVarP(&category, "category", "c", catalog.CategoryAll, "category chip")
	cmd.Flags().StringSliceVar(&favorites, "favorite", nil, "report ids to treat as favorites")
	return cmd
}

func newReportsCountsCommand(opts *RootOptions) *cobra.Command {
	var favorites []string
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show the report count of every category chip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			counts := cat.Counts(catalog.NewFavoriteSet(favorites...))
			return writeOutput(cmd.OutOrStdout(), opts.Format, counts.Entries())
		},
	}
	cmd.Flags().StringSliceVar(&favorites, "favorite", nil, "report ids to treat as favorites")
	return cmd
}
