package cmd

import (
	"github.com/spf13/cobra"

	"subboard/internal/catalog"
)

type validateOutput struct {
	File       string   `json:"file" yaml:"file"`
	Valid      bool     `json:"valid" yaml:"valid"`
	Reports    int      `json:"reports" yaml:"reports"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func newCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with catalog files",
	}
	cmd.AddCommand(newCatalogValidateCommand(opts))
	return cmd
}

func newCatalogValidateCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog file for duplicate ids, empty fields and reserved labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = opts.Catalog
			}
			out := validateOutput{File: file}
			if file == "" {
				out.File = "(built-in)"
			}

			cat, err := catalog.LoadOrDefault(file)
			if err != nil {
				out.Error = err.Error()
				if werr := writeOutput(cmd.OutOrStdout(), opts.Format, out); werr != nil {
					return werr
				}
				return err
			}
			out.Valid = true
			out.Reports = cat.Len()
			out.Categories = cat.Categories()
			return writeOutput(cmd.OutOrStdout(), opts.Format, out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file (default: --catalog)")
	return cmd
}
