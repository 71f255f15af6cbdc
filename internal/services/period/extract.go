package period

import (
	"math"

	"github.com/bobmcallan/finote/internal/models"
)

// MinValidValue is the lowest value accepted from a raw series. A cumulative
// return below -100% is impossible for a long-only position, so anything
// lower is corrupt and replaced with zero.
const MinValidValue = -100.0

// ExtractValues samples raw down to DataPoints(code, rangeDays) values.
//
// Daily takes the last n points. The other periods walk backward from the
// newest point one stride at a time, taking the single point at each offset
// (no averaging within the stride), and return the samples oldest first.
// When raw is too short the oldest positions are zero, so the result always
// has exactly n entries.
func ExtractValues(raw models.RawTimeSeries, code models.PeriodCode, rangeDays int) []float64 {
	n := DataPoints(code, rangeDays)
	values := make([]float64, n)
	if n == 0 || len(raw) == 0 {
		return values
	}

	stride := Stride(code)
	// Fill from the newest slot backward.
	slot := n - 1
	for idx := len(raw) - 1; idx >= 0 && slot >= 0; idx -= stride {
		values[slot] = sanitize(raw[idx].Value)
		slot--
	}
	return values
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < MinValidValue {
		return 0
	}
	return v
}
