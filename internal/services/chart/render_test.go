package chart

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/period"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderLineChart_PNG(t *testing.T) {
	png, err := RenderLineChart("Total assets", models.ResolvedSeries{
		Labels: []string{"10/5", "10/12", "10/19"},
		Values: []float64{16, 23, 30},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderLineChart_FlatSeries(t *testing.T) {
	png, err := RenderLineChart("", models.ResolvedSeries{
		Labels: []string{"a", "b", "c"},
		Values: []float64{0, 0, 0},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderLineChart_SinglePoint(t *testing.T) {
	png, err := RenderLineChart("x", models.ResolvedSeries{Labels: []string{"26.10"}, Values: []float64{22000}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderLineChart_EmptySeries(t *testing.T) {
	png, err := RenderLineChart("x", models.ResolvedSeries{Labels: []string{}, Values: []float64{}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderLineChart_ShortPeriodsAtDefaultRange(t *testing.T) {
	asOf := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		code      models.PeriodCode
		rangeDays int
	}{
		{models.PeriodYearly, 30},
		{models.PeriodMonthly, 30},
		{models.PeriodWeekly, 7},
		{models.PeriodDaily, 1},
	}
	for _, tc := range cases {
		resolved := period.Resolve(tc.code, tc.rangeDays, nil, asOf)
		require.Equal(t, 1, resolved.Len(), "%s/%d", tc.code, tc.rangeDays)

		png, err := RenderLineChart("Total assets", resolved)
		require.NoError(t, err, "%s/%d", tc.code, tc.rangeDays)
		assert.True(t, bytes.HasPrefix(png, pngMagic))
	}
}

func TestRenderLineChart_MisalignedSeries(t *testing.T) {
	_, err := RenderLineChart("x", models.ResolvedSeries{Labels: []string{"a", "b"}, Values: []float64{1}})
	assert.Error(t, err)
}

func TestTicks_ThinsButKeepsNewest(t *testing.T) {
	labels := make([]string, 365)
	for i := range labels {
		labels[i] = fmt.Sprintf("d%d", i)
	}
	got := ticks(labels)
	assert.LessOrEqual(t, len(got), maxTicks)
	assert.Equal(t, "d364", got[len(got)-1].Label)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Value, got[i-1].Value)
	}

	short := ticks([]string{"a", "b", "c"})
	assert.Len(t, short, 3)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "22.5M", formatValue(22_500_000))
	assert.Equal(t, "22K", formatValue(22_000))
	assert.Equal(t, "-3", formatValue(-3))
}
