// Package period turns a requested chart period and range into axis labels and
// an aligned value series.
//
// Every function here is pure: the reference date is passed in, the raw series
// is never modified, and invalid input is clamped or defaulted rather than
// reported, so a chart always has something to render.
package period

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/finote/internal/models"
)

// ErrUnknownPeriod is returned by ParsePeriodCode alongside the daily fallback.
var ErrUnknownPeriod = errors.New("unknown period")

// Caps on the number of points per period.
const (
	MaxDailyPoints   = 365
	MaxWeeklyPoints  = 52
	MaxMonthlyPoints = 12
	MaxYearlyPoints  = 12
)

// Raw points per sample for the strided periods.
const (
	WeeklyStride  = 7
	MonthlyStride = 30
	YearlyStride  = 365
)

// ParsePeriodCode maps the selector vocabulary ("1D", "1W", "1M", "1Y",
// "daily", "weekly", ...) to a PeriodCode. Unknown input yields PeriodDaily
// together with ErrUnknownPeriod; callers log it and carry on.
func ParsePeriodCode(s string) (models.PeriodCode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d", "daily", "day":
		return models.PeriodDaily, nil
	case "1w", "weekly", "week":
		return models.PeriodWeekly, nil
	case "1m", "monthly", "month":
		return models.PeriodMonthly, nil
	case "1y", "yearly", "year":
		return models.PeriodYearly, nil
	default:
		return models.PeriodDaily, fmt.Errorf("%w %q", ErrUnknownPeriod, s)
	}
}

// Normalize returns code when it is one of the four known periods, else PeriodDaily.
func Normalize(code models.PeriodCode) models.PeriodCode {
	switch code {
	case models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly, models.PeriodYearly:
		return code
	default:
		return models.PeriodDaily
	}
}

// DataPoints converts a range in days into the number of chart points for code.
func DataPoints(code models.PeriodCode, rangeDays int) int {
	if rangeDays < 0 {
		rangeDays = 0
	}
	switch Normalize(code) {
	case models.PeriodWeekly:
		return min(ceilDiv(rangeDays, WeeklyStride), MaxWeeklyPoints)
	case models.PeriodMonthly:
		return min(ceilDiv(rangeDays, MonthlyStride), MaxMonthlyPoints)
	case models.PeriodYearly:
		return min(ceilDiv(rangeDays, YearlyStride), MaxYearlyPoints)
	default:
		return min(rangeDays, MaxDailyPoints)
	}
}

// Stride returns how many raw daily points separate two samples for code.
func Stride(code models.PeriodCode) int {
	switch Normalize(code) {
	case models.PeriodWeekly:
		return WeeklyStride
	case models.PeriodMonthly:
		return MonthlyStride
	case models.PeriodYearly:
		return YearlyStride
	default:
		return 1
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
