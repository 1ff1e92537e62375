package postgres

import (
	"context"
	"time"

	"finbot-admin-api/internal/cohorts/core/domain"
	"finbot-admin-api/internal/cohorts/core/ports"

	"github.com/lib/pq"
)

type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error)
}

// CohortRepository serves both the anchor-source and activity bulk reads.
type CohortRepository struct {
	db DB
}

func NewCohortRepository(db DB) *CohortRepository {
	return &CohortRepository{db: db}
}

var _ ports.AnchorReaderPort = (*CohortRepository)(nil)
var _ ports.ActivityReaderPort = (*CohortRepository)(nil)

// Anchor sources are scanned whole, ordered ascending, so the in-memory fold
// keeps the earliest row per user.
const userRegistrationsSQL = `
SELECT id, created_at
FROM users
WHERE created_at IS NOT NULL
ORDER BY created_at ASC`

const transactionTimesSQL = `
SELECT user_id, created_at
FROM transactions
ORDER BY created_at ASC`

const paymentHistorySQL = `
SELECT user_id, created_at, status
FROM payment_history
ORDER BY created_at ASC`

const subscriptionStartsSQL = `
SELECT user_id, created_at
FROM user_subscriptions
ORDER BY created_at ASC`

const transactionActivitySQL = `
SELECT user_id, created_at
FROM transactions
WHERE user_id = ANY($1)
  AND created_at >= $2
  AND created_at < $3
ORDER BY created_at ASC`

const miniAppActivitySQL = `
SELECT user_id, created_at
FROM marketing_events
WHERE user_id = ANY($1)
  AND source = 'mini_app'
  AND created_at >= $2
  AND created_at < $3
ORDER BY created_at ASC`

func (r *CohortRepository) UserRegistrations(ctx context.Context) ([]domain.AnchorRow, error) {
	return r.scanAnchorRows(ctx, userRegistrationsSQL)
}

func (r *CohortRepository) TransactionTimes(ctx context.Context) ([]domain.AnchorRow, error) {
	return r.scanAnchorRows(ctx, transactionTimesSQL)
}

func (r *CohortRepository) SubscriptionStarts(ctx context.Context) ([]domain.AnchorRow, error) {
	return r.scanAnchorRows(ctx, subscriptionStartsSQL)
}

func (r *CohortRepository) PaymentHistory(ctx context.Context) ([]domain.PaymentRow, error) {
	rows, err := r.db.QueryContext(ctx, paymentHistorySQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentRow
	for rows.Next() {
		var row domain.PaymentRow
		if err := rows.Scan(&row.UserID, &row.At, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CohortRepository) TransactionActivity(ctx context.Context, userIDs []int64, from, to time.Time) (map[int64][]time.Time, error) {
	return r.scanActivity(ctx, transactionActivitySQL, userIDs, from, to)
}

func (r *CohortRepository) MiniAppActivity(ctx context.Context, userIDs []int64, from, to time.Time) (map[int64][]time.Time, error) {
	return r.scanActivity(ctx, miniAppActivitySQL, userIDs, from, to)
}

func (r *CohortRepository) scanAnchorRows(ctx context.Context, query string) ([]domain.AnchorRow, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AnchorRow
	for rows.Next() {
		var row domain.AnchorRow
		if err := rows.Scan(&row.UserID, &row.At); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CohortRepository) scanActivity(ctx context.Context, query string, userIDs []int64, from, to time.Time) (map[int64][]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs), from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]time.Time)
	for rows.Next() {
		var userID int64
		var at time.Time
		if err := rows.Scan(&userID, &at); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], at)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
