package ports

import (
	"context"
	"time"

	"finbot-admin-api/internal/cohorts/core/domain"
)

// AnchorReaderPort bulk-loads the raw rows each anchor definition derives
// from. Implementations must return rows ordered ascending by timestamp so
// the first-occurrence fold keeps the earliest event per user.
type AnchorReaderPort interface {
	UserRegistrations(ctx context.Context) ([]domain.AnchorRow, error)
	TransactionTimes(ctx context.Context) ([]domain.AnchorRow, error)
	PaymentHistory(ctx context.Context) ([]domain.PaymentRow, error)
	SubscriptionStarts(ctx context.Context) ([]domain.AnchorRow, error)
}

// ActivityReaderPort bulk-loads activity events for a fixed user set and time
// span, indexed by user with timestamps ascending. Each method is exactly one
// query regardless of how many cohorts or windows are being analyzed.
type ActivityReaderPort interface {
	TransactionActivity(ctx context.Context, userIDs []int64, from, to time.Time) (map[int64][]time.Time, error)
	MiniAppActivity(ctx context.Context, userIDs []int64, from, to time.Time) (map[int64][]time.Time, error)
}
