package domain

import (
	"fmt"
	"time"
)

// Bucket is the calendar granularity used both to group cohorts and to step
// retention windows.
type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketWeekly  Bucket = "weekly"
	BucketMonthly Bucket = "monthly"
)

func (b Bucket) Valid() bool {
	switch b {
	case BucketDaily, BucketWeekly, BucketMonthly:
		return true
	}
	return false
}

// WindowPrefix returns the label prefix for windows 1..N.
func (b Bucket) WindowPrefix() string {
	switch b {
	case BucketDaily:
		return "D"
	case BucketMonthly:
		return "M"
	default:
		return "W"
	}
}

// WindowLabel renders the label for window offset w. The origin window is
// always "W0" regardless of bucket; later windows take the bucket prefix.
func (b Bucket) WindowLabel(w int) string {
	if w == 0 {
		return "W0"
	}
	return fmt.Sprintf("%s%d", b.WindowPrefix(), w)
}

// StartOfPeriod truncates t to the start of its bucket period in loc.
// Weeks are ISO weeks and begin on Monday.
func StartOfPeriod(t time.Time, b Bucket, loc *time.Location) time.Time {
	t = t.In(loc)
	switch b {
	case BucketMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	case BucketWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		wd := int(day.Weekday())
		if wd == 0 {
			wd = 7 // Sunday
		}
		return day.AddDate(0, 0, -(wd - 1))
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// AddPeriods steps a period start forward by n buckets.
func AddPeriods(t time.Time, n int, b Bucket) time.Time {
	switch b {
	case BucketMonthly:
		return t.AddDate(0, n, 0)
	case BucketWeekly:
		return t.AddDate(0, 0, 7*n)
	default:
		return t.AddDate(0, 0, n)
	}
}

// CohortKey renders the canonical label for a period start: ISO date for
// daily, ISO year-week for weekly, year-month for monthly.
func CohortKey(periodStart time.Time, b Bucket) string {
	switch b {
	case BucketMonthly:
		return periodStart.Format("2006-01")
	case BucketWeekly:
		year, week := periodStart.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return periodStart.Format("2006-01-02")
	}
}
