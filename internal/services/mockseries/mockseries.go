// Package mockseries generates deterministic synthetic portfolio series used as
// placeholder data when no backend is configured.
package mockseries

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/period"
)

const (
	DefaultSeed      = 42
	DefaultBaseValue = 22000
	DefaultDays      = 5 * 365

	sourceName = "mock"
	floorRatio = 0.8
)

// Volatility returns the swing applied per period: wider periods move more.
func Volatility(code models.PeriodCode) float64 {
	switch period.Normalize(code) {
	case models.PeriodWeekly:
		return 1500
	case models.PeriodMonthly:
		return 2500
	case models.PeriodYearly:
		return 4000
	default:
		return 800
	}
}

// Generate produces count values trending upward from base with noise of the
// given volatility. No value falls below 80% of base.
func Generate(rng *rand.Rand, count int, base, volatility float64) []float64 {
	if count <= 0 {
		return []float64{}
	}
	floor := base * floorRatio
	out := make([]float64, count)
	for i := range out {
		trend := float64(i) / float64(count) * volatility * 2
		noise := (rng.Float64() - 0.3) * volatility
		out[i] = math.Max(floor, math.Round(base+trend+noise))
	}
	return out
}

// Source is a SeriesSource backed by Generate. The same seed and key always
// produce the same series.
type Source struct {
	seed   uint64
	base   float64
	days   int
	now    func() time.Time
	logger *common.Logger
}

// Option configures the source
type Option func(*Source)

// WithSeed sets the base seed
func WithSeed(seed uint64) Option {
	return func(s *Source) { s.seed = seed }
}

// WithBaseValue sets the starting value
func WithBaseValue(base float64) Option {
	return func(s *Source) {
		if base > 0 {
			s.base = base
		}
	}
}

// WithDays sets how many daily points LoadSeries returns
func WithDays(days int) Option {
	return func(s *Source) {
		if days > 0 {
			s.days = days
		}
	}
}

// WithClock sets the reference "today"
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(s *Source) { s.logger = logger }
}

// NewSource creates a synthetic series source
func NewSource(opts ...Option) *Source {
	s := &Source{
		seed:   DefaultSeed,
		base:   DefaultBaseValue,
		days:   DefaultDays,
		now:    time.Now,
		logger: common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements SeriesSource.
func (s *Source) Name() string {
	return sourceName
}

func (s *Source) rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return rand.New(rand.NewPCG(s.seed, h.Sum64()))
}

func (s *Source) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// LoadSeries implements SeriesSource. It returns one point per day ending today.
// The return-rate metric is derived from the market values relative to base.
func (s *Source) LoadSeries(ctx context.Context, key string, metric models.Metric) (models.RawTimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := Generate(s.rng(key), s.days, s.base, Volatility(models.PeriodDaily))
	end := s.today()

	out := make(models.RawTimeSeries, len(values))
	for i, v := range values {
		if metric == models.MetricReturnRate {
			v = math.Round((v/s.base-1)*10000) / 100
		}
		out[i] = models.TimeSeriesPoint{
			Date:  end.AddDate(0, 0, i-len(values)+1),
			Value: v,
		}
	}

	s.logger.Trace().Str("key", key).Str("metric", string(metric)).Int("points", len(out)).Msg("Synthetic series generated")
	return out, nil
}

// Placeholder builds a chart-ready series directly at the requested granularity,
// with the volatility of that period, for display before any data exists.
func (s *Source) Placeholder(key string, code models.PeriodCode, rangeDays int) models.ResolvedSeries {
	code = period.Normalize(code)
	n := period.DataPoints(code, rangeDays)
	return models.ResolvedSeries{
		Labels: period.Labels(code, s.now(), n),
		Values: Generate(s.rng(key, string(code)), n, s.base, Volatility(code)),
	}
}
