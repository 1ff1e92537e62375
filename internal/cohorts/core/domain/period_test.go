package domain

import (
	"testing"
	"time"
)

// ------------------------------------------------------------
// START OF PERIOD
// ------------------------------------------------------------

func TestStartOfPeriod_Daily(t *testing.T) {
	loc := time.UTC
	at := time.Date(2025, 3, 14, 17, 45, 12, 0, loc)

	got := StartOfPeriod(at, BucketDaily, loc)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStartOfPeriod_Weekly_MondayStart(t *testing.T) {
	loc := time.UTC

	// 2025-03-14 is a Friday; its ISO week starts Monday 2025-03-10.
	friday := time.Date(2025, 3, 14, 10, 0, 0, 0, loc)
	got := StartOfPeriod(friday, BucketWeekly, loc)
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Sunday belongs to the same week, not the next one.
	sunday := time.Date(2025, 3, 16, 23, 59, 0, 0, loc)
	got = StartOfPeriod(sunday, BucketWeekly, loc)
	if !got.Equal(want) {
		t.Fatalf("expected sunday to fold into %v, got %v", want, got)
	}

	// Monday is its own period start.
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	got = StartOfPeriod(monday, BucketWeekly, loc)
	if !got.Equal(want) {
		t.Fatalf("expected monday to stay %v, got %v", want, got)
	}
}

func TestStartOfPeriod_Monthly(t *testing.T) {
	loc := time.UTC
	at := time.Date(2025, 3, 31, 23, 0, 0, 0, loc)

	got := StartOfPeriod(at, BucketMonthly, loc)
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStartOfPeriod_TimezoneShiftsCohort(t *testing.T) {
	tashkent, err := time.LoadLocation("Asia/Tashkent")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2025-03-09 20:30 UTC is already 2025-03-10 01:30 in Tashkent (UTC+5),
	// so the daily period differs between the two zones.
	at := time.Date(2025, 3, 9, 20, 30, 0, 0, time.UTC)

	utcDay := StartOfPeriod(at, BucketDaily, time.UTC)
	if utcDay.Day() != 9 {
		t.Fatalf("expected UTC day 9, got %v", utcDay)
	}

	tkDay := StartOfPeriod(at, BucketDaily, tashkent)
	if tkDay.Day() != 10 {
		t.Fatalf("expected Tashkent day 10, got %v", tkDay)
	}
}

// ------------------------------------------------------------
// ADD PERIODS
// ------------------------------------------------------------

func TestAddPeriods(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, loc) // a Monday

	if got := AddPeriods(start, 3, BucketDaily); got.Day() != 9 {
		t.Fatalf("daily +3: expected day 9, got %v", got)
	}
	if got := AddPeriods(start, 2, BucketWeekly); got.Day() != 20 {
		t.Fatalf("weekly +2: expected day 20, got %v", got)
	}
	if got := AddPeriods(start, 2, BucketMonthly); got.Month() != time.March {
		t.Fatalf("monthly +2: expected March, got %v", got)
	}
}

// ------------------------------------------------------------
// COHORT KEY
// ------------------------------------------------------------

func TestCohortKey(t *testing.T) {
	loc := time.UTC

	daily := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	if got := CohortKey(daily, BucketDaily); got != "2025-03-10" {
		t.Fatalf("expected 2025-03-10, got %s", got)
	}
	if got := CohortKey(daily, BucketWeekly); got != "2025-W11" {
		t.Fatalf("expected 2025-W11, got %s", got)
	}
	if got := CohortKey(daily, BucketMonthly); got != "2025-03" {
		t.Fatalf("expected 2025-03, got %s", got)
	}

	// ISO year can differ from the calendar year at year boundaries:
	// 2024-12-30 is the Monday of 2025-W01.
	boundary := time.Date(2024, 12, 30, 0, 0, 0, 0, loc)
	if got := CohortKey(boundary, BucketWeekly); got != "2025-W01" {
		t.Fatalf("expected 2025-W01, got %s", got)
	}
}

// ------------------------------------------------------------
// WINDOW LABELS
// ------------------------------------------------------------

func TestWindowLabel(t *testing.T) {
	// The origin window is always W0, even for daily and monthly buckets.
	for _, b := range []Bucket{BucketDaily, BucketWeekly, BucketMonthly} {
		if got := b.WindowLabel(0); got != "W0" {
			t.Fatalf("bucket %s: expected W0, got %s", b, got)
		}
	}

	if got := BucketDaily.WindowLabel(3); got != "D3" {
		t.Fatalf("expected D3, got %s", got)
	}
	if got := BucketWeekly.WindowLabel(1); got != "W1" {
		t.Fatalf("expected W1, got %s", got)
	}
	if got := BucketMonthly.WindowLabel(12); got != "M12" {
		t.Fatalf("expected M12, got %s", got)
	}
}
