package ports

import (
	"context"

	"finbot-admin-api/internal/segments/core/domain"
)

// SegmentReaderPort resolves individual filters into user-id sets and serves
// the auxiliary lookups segmentation needs. An unresolvable filter must come
// back as an empty set, not an error.
type SegmentReaderPort interface {
	ResolveFilter(ctx context.Context, f domain.Filter) (domain.UserSet, error)
	AllUserIDs(ctx context.Context) (domain.UserSet, error)
	UserSummaries(ctx context.Context, userIDs []int64) ([]domain.UserSummary, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
}

// BroadcastPort feeds a resolved audience to the external bot backend.
type BroadcastPort interface {
	SendBroadcast(ctx context.Context, b domain.Broadcast) (domain.BroadcastReceipt, error)
}
