package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/chart"
)

func newChartCmd() *cobra.Command {
	var flags seriesFlags
	var out, title string

	cmd := &cobra.Command{
		Use:     "chart",
		Short:   "Render a resolved series as a PNG line chart.",
		Example: `  finote chart --period 1Y --range 365 --out yearly.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := flags.resolve(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if title == "" {
				title = fmt.Sprintf("%s %s", resp.Metric, resp.Period)
			}

			png, err := chart.RenderLineChart(title, models.ResolvedSeries{Labels: resp.Labels, Values: resp.Values})
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			cmd.Printf("Wrote %s (%d points)\n", out, resp.DataPoints)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "chart.png", "output PNG path")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	return cmd
}
