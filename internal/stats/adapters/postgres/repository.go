package postgres

import (
	"context"
	"fmt"
	"time"

	"finbot-admin-api/internal/stats/core/domain"
	"finbot-admin-api/internal/stats/core/ports"

	"github.com/shopspring/decimal"
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

type StatsRepository struct {
	db DB
}

func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

var _ ports.StatsReaderPort = (*StatsRepository)(nil)

const (
	countUsersSQL        = `SELECT COUNT(*) FROM users`
	countTransactionsSQL = `SELECT COUNT(*) FROM transactions`
	countActiveSubsSQL   = `SELECT COUNT(*) FROM user_subscriptions WHERE status = 'active'`
)

func (r *StatsRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.scanCount(ctx, countUsersSQL)
}

func (r *StatsRepository) CountTransactions(ctx context.Context) (int64, error) {
	return r.scanCount(ctx, countTransactionsSQL)
}

func (r *StatsRepository) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	return r.scanCount(ctx, countActiveSubsSQL)
}

func (r *StatsRepository) scanCount(ctx context.Context, query string) (int64, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return n, nil
}

// Amounts are aggregated in SQL and scanned as text so decimal sums stay
// exact end to end.
const transactionVolumeSQL = `
SELECT type, currency, COALESCE(SUM(amount), 0)::text, COUNT(*)
FROM transactions
%s
GROUP BY type, currency
ORDER BY type, currency`

func (r *StatsRepository) TransactionVolume(ctx context.Context, from, to time.Time) ([]domain.VolumeBucket, error) {
	where := ""
	args := []any{}
	argIndex := 1
	if !from.IsZero() {
		where = fmt.Sprintf("WHERE date >= $%d", argIndex)
		args = append(args, from.UTC())
		argIndex++
	}
	if !to.IsZero() {
		if where == "" {
			where = fmt.Sprintf("WHERE date < $%d", argIndex)
		} else {
			where += fmt.Sprintf(" AND date < $%d", argIndex)
		}
		args = append(args, to.UTC())
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(transactionVolumeSQL, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VolumeBucket
	for rows.Next() {
		var (
			b     domain.VolumeBucket
			total string
		)
		if err := rows.Scan(&b.Type, &b.Currency, &total, &b.Count); err != nil {
			return nil, err
		}
		b.Total, err = decimal.NewFromString(total)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
