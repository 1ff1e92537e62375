package domain

import (
	"sort"
	"strings"
	"time"
)

// Anchor selects which event marks a user's entry into a cohort.
//
// The store has no dedicated trial or billing-start fields, so billing and
// trial are documented approximations: first successful payment_history row
// and first user_subscriptions row respectively.
type Anchor string

const (
	AnchorAcquisition Anchor = "acquisition" // registration timestamp
	AnchorActivation  Anchor = "activation"  // earliest transaction
	AnchorBilling     Anchor = "billing"     // earliest successful payment
	AnchorTrial       Anchor = "trial"       // earliest subscription row
)

func (a Anchor) Valid() bool {
	switch a {
	case AnchorAcquisition, AnchorActivation, AnchorBilling, AnchorTrial:
		return true
	}
	return false
}

// ActivityDefinition is the predicate deciding what counts as "active"
// inside a retention window.
type ActivityDefinition string

const (
	EntriesOnly       ActivityDefinition = "entries_only"
	MiniAppOnly       ActivityDefinition = "miniapp_only"
	EntriesOrMiniApp  ActivityDefinition = "entries_or_miniapp"
	EntriesAndMiniApp ActivityDefinition = "entries_and_miniapp"
)

func (d ActivityDefinition) Valid() bool {
	switch d {
	case EntriesOnly, MiniAppOnly, EntriesOrMiniApp, EntriesAndMiniApp:
		return true
	}
	return false
}

// NeedsEntries reports whether the definition consults transaction activity.
func (d ActivityDefinition) NeedsEntries() bool { return d != MiniAppOnly }

// NeedsMiniApp reports whether the definition consults mini-app activity.
func (d ActivityDefinition) NeedsMiniApp() bool { return d != EntriesOnly }

// AnchorRow is one timestamped event row from an anchor source.
type AnchorRow struct {
	UserID int64
	At     time.Time
}

// PaymentRow is one payment_history row. Only rows with a successful status
// may anchor a user into a billing cohort.
type PaymentRow struct {
	UserID int64
	At     time.Time
	Status string
}

// AnchorMap holds at most one anchor timestamp per user. Users absent from
// the anchor source have no entry and cannot be cohorted.
type AnchorMap map[int64]time.Time

// FirstOccurrence folds rows ordered ascending by timestamp into one entry
// per user: the earliest row wins, later duplicates are discarded. Timestamps
// are converted into loc before any bucketing happens.
func FirstOccurrence(rows []AnchorRow, loc *time.Location) AnchorMap {
	anchors := make(AnchorMap, len(rows))
	for _, r := range rows {
		if _, seen := anchors[r.UserID]; seen {
			continue
		}
		anchors[r.UserID] = r.At.In(loc)
	}
	return anchors
}

var successfulPaymentStatuses = map[string]struct{}{
	"success":   {},
	"completed": {},
	"paid":      {},
}

// SuccessfulPayments drops non-successful rows before the first-occurrence
// fold, so a user whose only payments failed is never anchored.
func SuccessfulPayments(rows []PaymentRow) []AnchorRow {
	out := make([]AnchorRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := successfulPaymentStatuses[strings.ToLower(r.Status)]; ok {
			out = append(out, AnchorRow{UserID: r.UserID, At: r.At})
		}
	}
	return out
}

// FilterRange drops anchors before from or at/after toExclusive. Zero bounds
// leave that side unconstrained.
func (m AnchorMap) FilterRange(from, toExclusive time.Time) AnchorMap {
	if from.IsZero() && toExclusive.IsZero() {
		return m
	}
	out := make(AnchorMap, len(m))
	for userID, at := range m {
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !toExclusive.IsZero() && !at.Before(toExclusive) {
			continue
		}
		out[userID] = at
	}
	return out
}

// Cohort groups the users whose anchor fell into one calendar period.
// Every user appears in exactly one cohort per bucketing run.
type Cohort struct {
	Key         string
	PeriodStart time.Time
	UserIDs     []int64
}

func (c Cohort) Size() int { return len(c.UserIDs) }

// BuildCohorts buckets anchors into periods and returns cohorts sorted
// ascending by period start. Member ids are sorted so reruns over an
// unchanged snapshot produce identical output. limit > 0 keeps the most
// recent cohorts (trailing slice).
func BuildCohorts(anchors AnchorMap, b Bucket, loc *time.Location, limit int) []Cohort {
	byKey := make(map[string]*Cohort)
	for userID, at := range anchors {
		start := StartOfPeriod(at, b, loc)
		key := CohortKey(start, b)
		c, ok := byKey[key]
		if !ok {
			c = &Cohort{Key: key, PeriodStart: start}
			byKey[key] = c
		}
		c.UserIDs = append(c.UserIDs, userID)
	}

	cohorts := make([]Cohort, 0, len(byKey))
	for _, c := range byKey {
		sort.Slice(c.UserIDs, func(i, j int) bool { return c.UserIDs[i] < c.UserIDs[j] })
		cohorts = append(cohorts, *c)
	}
	sort.Slice(cohorts, func(i, j int) bool {
		return cohorts[i].PeriodStart.Before(cohorts[j].PeriodStart)
	})

	if limit > 0 && len(cohorts) > limit {
		cohorts = cohorts[len(cohorts)-limit:]
	}
	return cohorts
}

// MemberUnion returns the distinct user ids across all cohorts, sorted
// ascending.
func MemberUnion(cohorts []Cohort) []int64 {
	seen := make(map[int64]struct{})
	for _, c := range cohorts {
		for _, id := range c.UserIDs {
			seen[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
