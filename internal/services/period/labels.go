package period

import (
	"fmt"
	"time"
)

// DailyLabels returns count "M/D" labels, one per day, ending at asOf.
func DailyLabels(asOf time.Time, count int) []string {
	return dateLabels(asOf, count, 1)
}

// WeeklyLabels returns count "M/D" labels seven days apart, ending at asOf.
// They are real calendar dates, not week numbers.
func WeeklyLabels(asOf time.Time, count int) []string {
	return dateLabels(asOf, count, 7)
}

// MonthlyLabels returns "Week 1" … "Week {count}".
// The 1M chart has always been labelled by week ordinal rather than month name.
func MonthlyLabels(count int) []string {
	if count <= 0 {
		return []string{}
	}
	labels := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		labels = append(labels, fmt.Sprintf("Week %d", i))
	}
	return labels
}

// YearlyLabels returns count "YY.MM" labels, one per calendar month, ending
// with the month of asOf.
func YearlyLabels(asOf time.Time, count int) []string {
	if count <= 0 {
		return []string{}
	}
	// Anchor on the 1st so month subtraction never overflows into the next month.
	first := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	labels := make([]string, 0, count)
	for i := count - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		labels = append(labels, fmt.Sprintf("%02d.%02d", m.Year()%100, int(m.Month())))
	}
	return labels
}

func dateLabels(asOf time.Time, count, stepDays int) []string {
	if count <= 0 {
		return []string{}
	}
	labels := make([]string, 0, count)
	for i := count - 1; i >= 0; i-- {
		d := asOf.AddDate(0, 0, -i*stepDays)
		labels = append(labels, fmt.Sprintf("%d/%d", int(d.Month()), d.Day()))
	}
	return labels
}
