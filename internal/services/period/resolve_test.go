package period

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finote/internal/models"
)

var allPeriods = []models.PeriodCode{
	models.PeriodDaily,
	models.PeriodWeekly,
	models.PeriodMonthly,
	models.PeriodYearly,
}

// sequence builds n consecutive daily points valued 1..n ending at end.
func sequence(n int, end time.Time) models.RawTimeSeries {
	out := make(models.RawTimeSeries, n)
	for i := 0; i < n; i++ {
		out[i] = models.TimeSeriesPoint{
			Date:  end.AddDate(0, 0, i-n+1),
			Value: float64(i + 1),
		}
	}
	return out
}

func TestParsePeriodCode(t *testing.T) {
	cases := map[string]models.PeriodCode{
		"1D":      models.PeriodDaily,
		"1d":      models.PeriodDaily,
		"daily":   models.PeriodDaily,
		"1W":      models.PeriodWeekly,
		"weekly":  models.PeriodWeekly,
		"1M":      models.PeriodMonthly,
		" 1Y ":    models.PeriodYearly,
		"yearly":  models.PeriodYearly,
		"monthly": models.PeriodMonthly,
	}
	for in, want := range cases {
		got, err := ParsePeriodCode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParsePeriodCode_UnknownFallsBackToDaily(t *testing.T) {
	for _, in := range []string{"", "3M", "hourly", "1Q"} {
		got, err := ParsePeriodCode(in)
		assert.Equal(t, models.PeriodDaily, got, in)
		assert.True(t, errors.Is(err, ErrUnknownPeriod), in)
	}
}

func TestDataPoints_Clamp(t *testing.T) {
	assert.Equal(t, 365, DataPoints(models.PeriodDaily, 10000))
	assert.Equal(t, 52, DataPoints(models.PeriodWeekly, 10000))
	assert.Equal(t, 12, DataPoints(models.PeriodMonthly, 10000))
	assert.Equal(t, 12, DataPoints(models.PeriodYearly, 10000))

	assert.Equal(t, 30, DataPoints(models.PeriodDaily, 30))
	assert.Equal(t, 3, DataPoints(models.PeriodWeekly, 21))
	assert.Equal(t, 4, DataPoints(models.PeriodWeekly, 22))
	assert.Equal(t, 1, DataPoints(models.PeriodMonthly, 1))
	assert.Equal(t, 2, DataPoints(models.PeriodYearly, 366))
	assert.Equal(t, 0, DataPoints(models.PeriodWeekly, 0))
	assert.Equal(t, 0, DataPoints(models.PeriodDaily, -5))
	assert.Equal(t, 7, DataPoints(models.PeriodCode("bogus"), 7))
}

func TestResolve_LengthsAlignForAllPeriods(t *testing.T) {
	raw := sequence(400, asOf)
	for _, code := range append(allPeriods, models.PeriodCode("bogus")) {
		for _, rangeDays := range []int{-1, 0, 1, 6, 7, 8, 29, 30, 31, 90, 364, 365, 366, 730, 4000, 10000} {
			got := Resolve(code, rangeDays, raw, asOf)
			assert.Equal(t, len(got.Labels), len(got.Values), "code=%s range=%d", code, rangeDays)
			assert.Equal(t, DataPoints(code, rangeDays), got.Len(), "code=%s range=%d", code, rangeDays)
		}
	}
}

func TestResolve_ClampCaps(t *testing.T) {
	raw := sequence(50, asOf)
	assert.Len(t, Resolve(models.PeriodDaily, 10000, raw, asOf).Values, 365)
	assert.Len(t, Resolve(models.PeriodWeekly, 10000, raw, asOf).Values, 52)
	assert.Len(t, Resolve(models.PeriodMonthly, 10000, raw, asOf).Values, 12)
	assert.Len(t, Resolve(models.PeriodYearly, 10000, raw, asOf).Values, 12)
}

func TestResolve_DailyTakesLastPoints(t *testing.T) {
	got := Resolve(models.PeriodDaily, 7, sequence(10, asOf), asOf)
	assert.Equal(t, []float64{4, 5, 6, 7, 8, 9, 10}, got.Values)
	assert.Equal(t, DailyLabels(asOf, 7), got.Labels)
	assert.Equal(t, "10/19", got.Labels[6])
}

func TestResolve_WeeklyStride(t *testing.T) {
	got := Resolve(models.PeriodWeekly, 21, sequence(30, asOf), asOf)
	assert.Equal(t, []float64{16, 23, 30}, got.Values)
	assert.Equal(t, []string{"10/5", "10/12", "10/19"}, got.Labels)
}

func TestResolve_MonthlyAndYearlyStride(t *testing.T) {
	raw := sequence(800, asOf)

	monthly := Resolve(models.PeriodMonthly, 90, raw, asOf)
	assert.Equal(t, []float64{740, 770, 800}, monthly.Values)
	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3"}, monthly.Labels)

	yearly := Resolve(models.PeriodYearly, 730, raw, asOf)
	assert.Equal(t, []float64{435, 800}, yearly.Values)
	assert.Equal(t, []string{"26.09", "26.10"}, yearly.Labels)
}

func TestResolve_EmptySeriesFallsBackToZeros(t *testing.T) {
	got := Resolve(models.PeriodDaily, 7, nil, asOf)
	assert.Equal(t, DailyLabels(asOf, 7), got.Labels)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0}, got.Values)

	got = Resolve(models.PeriodYearly, 10000, models.RawTimeSeries{}, asOf)
	assert.Len(t, got.Values, 12)
	for _, v := range got.Values {
		assert.Zero(t, v)
	}
}

func TestResolve_ShortSeriesZeroFillsOldestSlots(t *testing.T) {
	got := Resolve(models.PeriodWeekly, 35, sequence(10, asOf), asOf)
	// offsets 0 and 7 exist (values 10 and 3); the three older samples do not.
	assert.Equal(t, []float64{0, 0, 0, 3, 10}, got.Values)
}

func TestExtractValues_FloorRule(t *testing.T) {
	raw := sequence(5, asOf)
	raw[2].Value = -150
	raw[3].Value = -100

	got := ExtractValues(raw, models.PeriodDaily, 5)
	assert.Equal(t, []float64{1, 2, 0, -100, 5}, got)
}

func TestExtractValues_NonFiniteBecomesZero(t *testing.T) {
	raw := sequence(3, asOf)
	raw[0].Value = math.NaN()
	raw[1].Value = math.Inf(1)

	got := ExtractValues(raw, models.PeriodDaily, 3)
	assert.Equal(t, []float64{0, 0, 3}, got)
}

func TestExtractValues_DoesNotMutateInput(t *testing.T) {
	raw := sequence(10, asOf)
	raw[9].Value = -500
	before := append(models.RawTimeSeries(nil), raw...)

	ExtractValues(raw, models.PeriodWeekly, 14)

	assert.Equal(t, before, raw)
}

func TestResolve_UnknownCodeBehavesAsDaily(t *testing.T) {
	raw := sequence(10, asOf)
	assert.Equal(t,
		Resolve(models.PeriodDaily, 5, raw, asOf),
		Resolve(models.PeriodCode("3M"), 5, raw, asOf),
	)
}
