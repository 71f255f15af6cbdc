package period

import (
	"time"

	"github.com/bobmcallan/finote/internal/models"
)

// Labels returns the axis labels for code and an already clamped point count.
func Labels(code models.PeriodCode, asOf time.Time, count int) []string {
	switch Normalize(code) {
	case models.PeriodWeekly:
		return WeeklyLabels(asOf, count)
	case models.PeriodMonthly:
		return MonthlyLabels(count)
	case models.PeriodYearly:
		return YearlyLabels(asOf, count)
	default:
		return DailyLabels(asOf, count)
	}
}

// Resolve produces the labels and values for a chart of code over rangeDays,
// with asOf as the most recent day. Labels and Values always have equal length.
// rangeDays is passed unclamped; both halves apply the clamp themselves.
func Resolve(code models.PeriodCode, rangeDays int, raw models.RawTimeSeries, asOf time.Time) models.ResolvedSeries {
	n := DataPoints(code, rangeDays)
	return models.ResolvedSeries{
		Labels: Labels(code, asOf, n),
		Values: ExtractValues(raw, code, rangeDays),
	}
}
