package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/finote/internal/clients/dashboard"
	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/mockseries"
	"github.com/bobmcallan/finote/internal/services/period"
)

// seriesFlags holds the flags shared by resolve and chart.
type seriesFlags struct {
	period    string
	rangeDays int
	metric    string
	assetType string
	asOf      string
	input     string
	backend   string
	session   string
	seed      uint64
	verbose   bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "finote",
		Short: "Resolve and render portfolio dashboard series.",
		Long: `finote turns a daily portfolio time series into chart-ready labels and values
for the 1D, 1W, 1M and 1Y views, and can render the result as a PNG.

Series come from a JSON file (--input), the dashboard backend (--backend)
or, by default, the deterministic synthetic source.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			_ = godotenv.Load()
		},
	}

	root.AddCommand(newResolveCmd(), newChartCmd(), newVersionCmd())
	return root
}

func (f *seriesFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.period, "period", "p", "1D", "granularity: 1D, 1W, 1M or 1Y")
	cmd.Flags().IntVarP(&f.rangeDays, "range", "r", 30, "range in days")
	cmd.Flags().StringVarP(&f.metric, "metric", "m", string(models.MetricMarketValue), "market_value or return_rate")
	cmd.Flags().StringVarP(&f.assetType, "asset-type", "a", "", "asset type filter (stock, real_estate); empty for all")
	cmd.Flags().StringVar(&f.asOf, "as-of", "", "reference day YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "JSON file with [{\"date\",\"value\"}] points")
	cmd.Flags().StringVar(&f.backend, "backend", "", "dashboard backend base URL")
	cmd.Flags().StringVar(&f.session, "session", "", "dashboard session cookie for --backend")
	cmd.Flags().Uint64Var(&f.seed, "seed", mockseries.DefaultSeed, "seed for the synthetic source")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log source activity to stderr")
}

// referenceDay parses --as-of, defaulting to today.
func (f *seriesFlags) referenceDay() (time.Time, error) {
	if f.asOf == "" {
		return time.Now(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", f.asOf, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: %w", f.asOf, err)
	}
	return d, nil
}

// source picks the series source from the flags.
func (f *seriesFlags) source(asOf time.Time) interfaces.SeriesSource {
	logger := common.NewSilentLogger()
	if f.verbose {
		logger = common.NewLogger("debug")
	}

	if f.backend != "" {
		return dashboard.NewClient(
			dashboard.WithBaseURL(f.backend),
			dashboard.WithSessionCookie(f.session),
			dashboard.WithLogger(logger),
		)
	}
	return mockseries.NewSource(
		mockseries.WithSeed(f.seed),
		mockseries.WithClock(func() time.Time { return asOf }),
		mockseries.WithLogger(logger),
	)
}

// resolve loads the raw series and resolves it for the requested period.
// An unknown period falls back to daily with a warning on warn.
func (f *seriesFlags) resolve(ctx context.Context, warn io.Writer) (*models.SeriesResponse, error) {
	asOf, err := f.referenceDay()
	if err != nil {
		return nil, err
	}

	code, perr := period.ParsePeriodCode(f.period)
	if perr != nil {
		fmt.Fprintf(warn, "warning: %v, using daily\n", perr)
	}
	metric := models.ParseMetric(strings.ToLower(f.metric))
	assetType := strings.TrimSpace(f.assetType)

	var raw models.RawTimeSeries
	if f.input != "" {
		raw, err = loadSeriesFile(f.input)
	} else {
		raw, err = f.source(asOf).LoadSeries(ctx, assetType, metric)
	}
	if err != nil {
		return nil, err
	}

	resolved := period.Resolve(code, f.rangeDays, raw, asOf)
	return &models.SeriesResponse{
		Period:     code,
		RangeDays:  f.rangeDays,
		DataPoints: resolved.Len(),
		AssetType:  assetType,
		Metric:     metric,
		Labels:     resolved.Labels,
		Values:     resolved.Values,
	}, nil
}
