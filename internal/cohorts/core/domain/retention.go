package domain

import "time"

// ActivityIndex holds every activity event relevant to one retention
// computation, loaded up front in at most two bulk reads. Per-user timestamp
// slices are ordered ascending; all window checks are in-memory scans.
type ActivityIndex struct {
	Entries map[int64][]time.Time // transaction timestamps per user
	MiniApp map[int64][]time.Time // mini-app open timestamps per user
}

func hasEventIn(events []time.Time, start, end time.Time) bool {
	for _, at := range events {
		if !at.Before(start) && at.Before(end) {
			return true
		}
	}
	return false
}

// ActiveIn reports whether the user counts as active within [start, end)
// under the given definition.
func (idx ActivityIndex) ActiveIn(userID int64, start, end time.Time, def ActivityDefinition) bool {
	switch def {
	case EntriesOnly:
		return hasEventIn(idx.Entries[userID], start, end)
	case MiniAppOnly:
		return hasEventIn(idx.MiniApp[userID], start, end)
	case EntriesAndMiniApp:
		return hasEventIn(idx.Entries[userID], start, end) &&
			hasEventIn(idx.MiniApp[userID], start, end)
	case EntriesOrMiniApp:
		return hasEventIn(idx.Entries[userID], start, end) ||
			hasEventIn(idx.MiniApp[userID], start, end)
	}
	return false
}

// RetentionRow is the computed retention of one cohort across all windows.
type RetentionRow struct {
	CohortKey   string
	PeriodStart time.Time
	CohortSize  int
	UserIDs     []int64
	Windows     map[string]float64
	Absolute    map[string]int
}

// Report is the full result of one retention computation.
type Report struct {
	Rows         []RetentionRow
	TotalUsers   int
	AvgRetention map[string]float64
	BestCohort   string
}

// CalculateRetention evaluates the activity predicate for every cohort and
// window offset using only the in-memory index. Window 0 is the cohort's own
// origin period and is 100% retained by definition, not re-measured.
func CalculateRetention(cohorts []Cohort, idx ActivityIndex, b Bucket, windows int, def ActivityDefinition) []RetentionRow {
	rows := make([]RetentionRow, 0, len(cohorts))
	for _, c := range cohorts {
		row := RetentionRow{
			CohortKey:   c.Key,
			PeriodStart: c.PeriodStart,
			CohortSize:  c.Size(),
			UserIDs:     c.UserIDs,
			Windows:     make(map[string]float64, windows+1),
			Absolute:    make(map[string]int, windows+1),
		}
		row.Windows["W0"] = 1.0
		row.Absolute["W0"] = c.Size()

		for w := 1; w <= windows; w++ {
			start := AddPeriods(c.PeriodStart, w, b)
			end := AddPeriods(c.PeriodStart, w+1, b)

			active := 0
			for _, userID := range c.UserIDs {
				if idx.ActiveIn(userID, start, end, def) {
					active++
				}
			}

			label := b.WindowLabel(w)
			row.Absolute[label] = active
			if c.Size() > 0 {
				row.Windows[label] = float64(active) / float64(c.Size())
			} else {
				row.Windows[label] = 0
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// AverageRetention returns the mean fraction per window across all cohorts,
// with W0 fixed at 1.0.
func AverageRetention(rows []RetentionRow, b Bucket, windows int) map[string]float64 {
	avg := make(map[string]float64, windows+1)
	avg["W0"] = 1.0
	if len(rows) == 0 {
		return avg
	}
	for w := 1; w <= windows; w++ {
		label := b.WindowLabel(w)
		var sum float64
		for _, r := range rows {
			sum += r.Windows[label]
		}
		avg[label] = sum / float64(len(rows))
	}
	return avg
}

// BestCohort returns the key of the cohort with the strictly highest mean
// fraction over windows 1..N. Ties keep the cohort encountered first in sort
// order; if every mean is zero there is no best cohort and "" is returned.
func BestCohort(rows []RetentionRow) string {
	best := ""
	bestAvg := 0.0
	for _, r := range rows {
		var sum float64
		n := 0
		for label, v := range r.Windows {
			if label == "W0" {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			continue
		}
		if avg := sum / float64(n); avg > bestAvg {
			bestAvg = avg
			best = r.CohortKey
		}
	}
	return best
}
