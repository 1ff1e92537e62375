package usecase

import (
	"context"
	"errors"
	"time"

	"finbot-admin-api/internal/stats/core/domain"
	"finbot-admin-api/internal/stats/core/ports"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidDateRange = errors.New("invalid date range")

const dateLayout = "2006-01-02"

type OverviewInput struct {
	StartDate string // optional "2006-01-02", UTC
	EndDate   string // optional, inclusive
}

type GetOverviewUseCase struct {
	reader ports.StatsReaderPort
}

func NewGetOverviewUseCase(reader ports.StatsReaderPort) *GetOverviewUseCase {
	return &GetOverviewUseCase{reader: reader}
}

// Execute loads the four independent overview reads concurrently.
func (uc *GetOverviewUseCase) Execute(ctx context.Context, in OverviewInput) (*domain.Overview, error) {
	from, to, err := parseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var out domain.Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.reader.CountUsers(gctx)
		out.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := uc.reader.CountTransactions(gctx)
		out.TotalTransactions = n
		return err
	})
	g.Go(func() error {
		n, err := uc.reader.CountActiveSubscriptions(gctx)
		out.ActiveSubscriptions = n
		return err
	})
	g.Go(func() error {
		volume, err := uc.reader.TransactionVolume(gctx, from, to)
		out.Volume = volume
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	var from, toExclusive time.Time
	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDateRange
		}
		from = t
	}
	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, time.UTC)
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
