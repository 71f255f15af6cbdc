package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bobmcallan/finote/internal/models"
)

type filePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// loadSeriesFile reads a JSON array of {"date","value"} points. Dates may be
// YYYY-MM-DD or RFC3339. Points are returned oldest first.
func loadSeriesFile(path string) (models.RawTimeSeries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var points []filePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := make(models.RawTimeSeries, 0, len(points))
	for i, p := range points {
		d, err := parseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: point %d: %w", path, i, err)
		}
		out = append(out, models.TimeSeriesPoint{Date: d, Value: p.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	if d, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}
