package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/finote/internal/models"
)

func newResolveCmd() *cobra.Command {
	var flags seriesFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the labels and values of a resolved series.",
		Example: `  finote resolve --period 1W --range 28
  finote resolve -p 1M -r 180 --input history.json --as-of 2026-10-19`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := flags.resolve(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return printSeriesTable(cmd.OutOrStdout(), resp)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the response as JSON")
	return cmd
}

// printSeriesTable writes one row per point. Values are green when they rose
// against the previous point and red when they fell.
func printSeriesTable(w io.Writer, resp *models.SeriesResponse) error {
	up := color.New(color.FgGreen).SprintFunc()
	down := color.New(color.FgRed).SprintFunc()

	table := tablewriter.NewWriter(w)
	table.Header("Label", "Value", "Change")
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, label := range resp.Labels {
		v := decimal.NewFromFloat(resp.Values[i])
		value := v.StringFixed(2)
		change := ""
		if i > 0 {
			delta := v.Sub(decimal.NewFromFloat(resp.Values[i-1]))
			switch delta.Sign() {
			case 1:
				value = up(value)
				change = up("+" + delta.StringFixed(2))
			case -1:
				value = down(value)
				change = down(delta.StringFixed(2))
			default:
				change = "0.00"
			}
		}
		data = append(data, []string{label, value, change})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s over %d days: %d points (%s)\n", resp.Period, resp.RangeDays, resp.DataPoints, resp.Metric)
	return err
}
