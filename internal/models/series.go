// Package models defines data structures for Finote
package models

import (
	"time"
)

// PeriodCode selects the chart granularity. The UI surfaces it as 1D/1W/1M/1Y.
type PeriodCode string

const (
	PeriodDaily   PeriodCode = "1D"
	PeriodWeekly  PeriodCode = "1W"
	PeriodMonthly PeriodCode = "1M"
	PeriodYearly  PeriodCode = "1Y"
)

// Interval is the coarse daily/weekly toggle used by the compact card views.
type Interval string

const (
	IntervalDaily  Interval = "daily"
	IntervalWeekly Interval = "weekly"
)

// Metric selects which field of a backend time-series item becomes the point value.
type Metric string

const (
	MetricMarketValue Metric = "market_value"
	MetricReturnRate  Metric = "return_rate"
)

// TimeSeriesPoint is one observation for one calendar day.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RawTimeSeries is an ordered sequence of points, oldest first.
// Callers own it; resolvers treat it as read-only.
type RawTimeSeries []TimeSeriesPoint

// Values returns the point values in order.
func (s RawTimeSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the most recent point and true, or false when the series is empty.
func (s RawTimeSeries) Last() (TimeSeriesPoint, bool) {
	if len(s) == 0 {
		return TimeSeriesPoint{}, false
	}
	return s[len(s)-1], true
}

// ResolvedSeries is the chart-ready output: axis labels and aligned values.
// len(Labels) == len(Values) always holds.
type ResolvedSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Len returns the number of aligned label/value pairs.
func (r ResolvedSeries) Len() int {
	return len(r.Labels)
}

// SeriesSnapshot is a raw series persisted after a successful load,
// used as the fallback when the source is unavailable.
type SeriesSnapshot struct {
	Key       string            `json:"key"`
	Metric    Metric            `json:"metric"`
	Source    string            `json:"source"`
	Points    []TimeSeriesPoint `json:"points"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// SeriesRequest describes one chart request.
type SeriesRequest struct {
	AssetType string     `json:"asset_type,omitempty"` // "stock", "real_estate" or empty for all assets
	Metric    Metric     `json:"metric"`
	Period    PeriodCode `json:"period"`
	RangeDays int        `json:"range"`
}

// SeriesResponse is the JSON body returned for a resolved chart series.
type SeriesResponse struct {
	Period     PeriodCode `json:"period"`
	RangeDays  int        `json:"range"`
	DataPoints int        `json:"data_points"`
	AssetType  string     `json:"asset_type,omitempty"`
	Metric     Metric     `json:"metric"`
	Labels     []string   `json:"labels"`
	Values     []float64  `json:"values"`
}

// CardPoint is one bar of a compact card chart.
type CardPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CardPayload is the compact "total assets" card: latest value, change over the
// interval and the bars covering it.
type CardPayload struct {
	Interval     Interval    `json:"interval"`
	TotalValue   float64     `json:"total_value"`
	WoWChangePct float64     `json:"wow_change_pct"`
	Series       []CardPoint `json:"series"`
}

// ChartHandle is one rendered chart owned by the chart registry.
type ChartHandle struct {
	ID        string         `json:"id"`
	ChartID   string         `json:"chart_id"`
	Sequence  uint64         `json:"sequence"`
	Request   SeriesRequest  `json:"request"`
	Series    ResolvedSeries `json:"series"`
	PNG       []byte         `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

// DashboardTimeSeries is the portfolio history returned by the dashboard backend,
// split per metric. Both series share the same dates.
type DashboardTimeSeries struct {
	AssetType   string        `json:"asset_type,omitempty"`
	MarketValue RawTimeSeries `json:"market_value"`
	ReturnRate  RawTimeSeries `json:"return_rate"`
}

// Series returns the series for metric; unknown metrics map to market value.
func (d *DashboardTimeSeries) Series(metric Metric) RawTimeSeries {
	if d == nil {
		return nil
	}
	if metric == MetricReturnRate {
		return d.ReturnRate
	}
	return d.MarketValue
}

// ParseMetric maps a query value to a Metric, defaulting to market value.
func ParseMetric(s string) Metric {
	switch Metric(s) {
	case MetricReturnRate:
		return MetricReturnRate
	default:
		return MetricMarketValue
	}
}
