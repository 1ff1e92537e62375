package ports

import (
	"context"
	"time"

	"finbot-admin-api/internal/stats/core/domain"
)

type StatsReaderPort interface {
	CountUsers(ctx context.Context) (int64, error)
	CountTransactions(ctx context.Context) (int64, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
	// TransactionVolume groups by type and currency; zero bounds are open.
	TransactionVolume(ctx context.Context, from, to time.Time) ([]domain.VolumeBucket, error)
}
