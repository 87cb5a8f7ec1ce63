package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"timeframe-chart/internal/aggregation"
	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/reporting"
)

func newAggregateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate a series and print the result",
		Long: `Aggregate reads a series, buckets it at the requested granularity and
prints the points in first-occurrence order.

Output formats:
  json      the aggregated points as a JSON array (default)
  csv       timestamp,value rows
  markdown  a summary report with data quality checks and a points table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.granularity()
			if err != nil {
				return err
			}

			input, err := a.readInput(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format := a.v.GetString("aggregate.output"); format {
			case "json":
				view := aggregation.Aggregate(input, g)
				if view == nil {
					view = domain.Series{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			case "csv":
				_, err = fmt.Fprint(out, reporting.RenderCSV(aggregation.Aggregate(input, g)))
				return err
			case "markdown", "md":
				report := reporting.NewGenerator().Generate(input, g)
				_, err = fmt.Fprint(out, reporting.RenderMarkdown(report))
				return err
			default:
				return fmt.Errorf("unknown output format %q (json, csv, markdown)", format)
			}
		},
	}

	cmd.Flags().StringP("output", "o", "json", "output format (json, csv, markdown)")
	_ = a.v.BindPFlag("aggregate.output", cmd.Flags().Lookup("output"))

	return cmd
}
