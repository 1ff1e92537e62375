package usecase

import (
	"context"
	"errors"
	"time"

	"finbot-admin-api/internal/cohorts/core/domain"
	"finbot-admin-api/internal/cohorts/core/ports"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidAnchor      = errors.New("invalid anchor")
	ErrInvalidActivityDef = errors.New("invalid active definition")
	ErrInvalidBucket      = errors.New("invalid bucket")
	ErrInvalidWindows     = errors.New("invalid window count")
	ErrInvalidLimit       = errors.New("invalid cohort limit")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrUnknownTimezone    = errors.New("unknown timezone")
)

const (
	DefaultTimezone = "Asia/Tashkent"
	DefaultWindows  = 12
	maxWindows      = 52
	dateLayout      = "2006-01-02"
)

type CohortRetentionInput struct {
	Anchor    domain.Anchor
	Active    domain.ActivityDefinition
	Bucket    domain.Bucket
	Windows   int
	Limit     int    // 0 = all cohorts, otherwise keep the most recent N
	StartDate string // optional "2006-01-02", interpreted in Timezone
	EndDate   string // optional, inclusive
	Timezone  string
}

type CohortRetentionUseCase struct {
	anchors  ports.AnchorReaderPort
	activity ports.ActivityReaderPort
}

func NewCohortRetentionUseCase(anchors ports.AnchorReaderPort, activity ports.ActivityReaderPort) *CohortRetentionUseCase {
	return &CohortRetentionUseCase{anchors: anchors, activity: activity}
}

// Execute validates and defaults the analytics parameters, then runs the
// anchor -> cohort -> activity -> retention chain. An empty anchor source is
// not an error: the report simply has no rows.
func (uc *CohortRetentionUseCase) Execute(ctx context.Context, in CohortRetentionInput) (*domain.Report, error) {
	in = applyDefaults(in)

	if !in.Anchor.Valid() {
		return nil, ErrInvalidAnchor
	}
	if !in.Active.Valid() {
		return nil, ErrInvalidActivityDef
	}
	if !in.Bucket.Valid() {
		return nil, ErrInvalidBucket
	}
	if in.Windows < 1 || in.Windows > maxWindows {
		return nil, ErrInvalidWindows
	}
	if in.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	loc, err := time.LoadLocation(in.Timezone)
	if err != nil {
		return nil, ErrUnknownTimezone
	}

	from, toExclusive, err := parseDateRange(in.StartDate, in.EndDate, loc)
	if err != nil {
		return nil, err
	}

	anchors, err := uc.resolveAnchors(ctx, in.Anchor, loc)
	if err != nil {
		return nil, err
	}
	anchors = anchors.FilterRange(from, toExclusive)

	cohorts := domain.BuildCohorts(anchors, in.Bucket, loc, in.Limit)
	if len(cohorts) == 0 {
		return emptyReport(), nil
	}

	// Activity span: earliest cohort period through the end of the last
	// cohort's final window. Must be fully loaded before any window is
	// evaluated.
	spanFrom := cohorts[0].PeriodStart
	spanTo := domain.AddPeriods(cohorts[len(cohorts)-1].PeriodStart, in.Windows+1, in.Bucket)

	idx, err := uc.fetchActivity(ctx, domain.MemberUnion(cohorts), spanFrom, spanTo, in.Active)
	if err != nil {
		return nil, err
	}

	rows := domain.CalculateRetention(cohorts, idx, in.Bucket, in.Windows, in.Active)

	report := &domain.Report{
		Rows:         rows,
		AvgRetention: domain.AverageRetention(rows, in.Bucket, in.Windows),
		BestCohort:   domain.BestCohort(rows),
	}
	for _, r := range rows {
		report.TotalUsers += r.CohortSize
	}
	return report, nil
}

func applyDefaults(in CohortRetentionInput) CohortRetentionInput {
	if in.Anchor == "" {
		in.Anchor = domain.AnchorActivation
	}
	if in.Active == "" {
		in.Active = domain.EntriesOrMiniApp
	}
	if in.Bucket == "" {
		in.Bucket = domain.BucketWeekly
	}
	if in.Windows == 0 {
		in.Windows = DefaultWindows
	}
	if in.Timezone == "" {
		in.Timezone = DefaultTimezone
	}
	return in
}

func emptyReport() *domain.Report {
	return &domain.Report{
		Rows:         []domain.RetentionRow{},
		AvgRetention: map[string]float64{},
	}
}

// parseDateRange turns optional date strings into [from, toExclusive) bounds
// in loc. The end date is inclusive, so the exclusive bound is the following
// midnight.
func parseDateRange(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	var from, toExclusive time.Time
	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDateRange
		}
		from = t
	}
	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDateRange
		}
		toExclusive = t.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !toExclusive.IsZero() && toExclusive.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return from, toExclusive, nil
}

func (uc *CohortRetentionUseCase) resolveAnchors(ctx context.Context, anchor domain.Anchor, loc *time.Location) (domain.AnchorMap, error) {
	switch anchor {
	case domain.AnchorAcquisition:
		rows, err := uc.anchors.UserRegistrations(ctx)
		if err != nil {
			return nil, err
		}
		return domain.FirstOccurrence(rows, loc), nil
	case domain.AnchorActivation:
		rows, err := uc.anchors.TransactionTimes(ctx)
		if err != nil {
			return nil, err
		}
		return domain.FirstOccurrence(rows, loc), nil
	case domain.AnchorBilling:
		rows, err := uc.anchors.PaymentHistory(ctx)
		if err != nil {
			return nil, err
		}
		return domain.FirstOccurrence(domain.SuccessfulPayments(rows), loc), nil
	case domain.AnchorTrial:
		rows, err := uc.anchors.SubscriptionStarts(ctx)
		if err != nil {
			return nil, err
		}
		return domain.FirstOccurrence(rows, loc), nil
	}
	return nil, ErrInvalidAnchor
}

// fetchActivity issues at most two bulk reads, and only for the sources the
// definition actually consults. The reads are independent and run
// concurrently; a failure of either aborts the computation.
func (uc *CohortRetentionUseCase) fetchActivity(ctx context.Context, userIDs []int64, from, to time.Time, def domain.ActivityDefinition) (domain.ActivityIndex, error) {
	idx := domain.ActivityIndex{
		Entries: map[int64][]time.Time{},
		MiniApp: map[int64][]time.Time{},
	}

	g, gctx := errgroup.WithContext(ctx)
	if def.NeedsEntries() {
		g.Go(func() error {
			m, err := uc.activity.TransactionActivity(gctx, userIDs, from, to)
			if err != nil {
				return err
			}
			idx.Entries = m
			return nil
		})
	}
	if def.NeedsMiniApp() {
		g.Go(func() error {
			m, err := uc.activity.MiniAppActivity(gctx, userIDs, from, to)
			if err != nil {
				return err
			}
			idx.MiniApp = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ActivityIndex{}, err
	}
	return idx, nil
}
