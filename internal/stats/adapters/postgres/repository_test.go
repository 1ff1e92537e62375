package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeRowScanner implements RowScanner for tests.
type fakeRowScanner struct {
	rows []fakeRow
	i    int
	err  error
}

type fakeRow struct {
	values []any
}

func (f *fakeRowScanner) Next() bool {
	return f.i < len(f.rows)
}

func (f *fakeRowScanner) Scan(dest ...any) error {
	if f.i >= len(f.rows) {
		return errors.New("no more rows")
	}
	row := f.rows[f.i]
	if len(dest) != len(row.values) {
		return errors.New("dest length mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *int64:
			v, ok := row.values[i].(int64)
			if !ok {
				return errors.New("type assertion to int64 failed")
			}
			*d = v
		case *string:
			v, ok := row.values[i].(string)
			if !ok {
				return errors.New("type assertion to string failed")
			}
			*d = v
		default:
			return errors.New("unsupported dest type")
		}
	}
	f.i++
	return nil
}

func (f *fakeRowScanner) Err() error {
	return f.err
}

func (f *fakeRowScanner) Close() error {
	return nil
}

// fakeDB implements DB interface.
type fakeDB struct {
	QueryFn   func(ctx context.Context, query string, args ...any) (RowScanner, error)
	lastQuery string
	lastArgs  []any
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	f.lastQuery = query
	f.lastArgs = args
	if f.QueryFn != nil {
		return f.QueryFn(ctx, query, args...)
	}
	return &fakeRowScanner{}, nil
}

// ------------------------------------------------------------
// COUNTERS
// ------------------------------------------------------------

func TestStatsRepository_Counts(t *testing.T) {
	tests := []struct {
		name      string
		call      func(r *StatsRepository) (int64, error)
		wantTable string
	}{
		{"users", func(r *StatsRepository) (int64, error) { return r.CountUsers(context.Background()) }, "FROM users"},
		{"transactions", func(r *StatsRepository) (int64, error) { return r.CountTransactions(context.Background()) }, "FROM transactions"},
		{"active_subscriptions", func(r *StatsRepository) (int64, error) { return r.CountActiveSubscriptions(context.Background()) }, "FROM user_subscriptions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{
				QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
					if !strings.Contains(query, tt.wantTable) {
						t.Fatalf("unexpected query: %s", query)
					}
					return &fakeRowScanner{rows: []fakeRow{{values: []any{int64(42)}}}}, nil
				},
			}
			repo := NewStatsRepository(db)

			n, err := tt.call(repo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != 42 {
				t.Fatalf("expected 42, got %d", n)
			}
		})
	}
}

func TestStatsRepository_ActiveSubscriptionsFilter(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "status = 'active'") {
				t.Fatalf("expected active status filter: %s", query)
			}
			return &fakeRowScanner{rows: []fakeRow{{values: []any{int64(0)}}}}, nil
		},
	}
	repo := NewStatsRepository(db)

	if _, err := repo.CountActiveSubscriptions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ------------------------------------------------------------
// TRANSACTION VOLUME
// ------------------------------------------------------------

func TestTransactionVolume_GroupedAndExact(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "GROUP BY type, currency") {
				t.Fatalf("expected grouping: %s", query)
			}
			if !strings.Contains(query, "::text") {
				t.Fatalf("expected text-cast sum: %s", query)
			}
			return &fakeRowScanner{
				rows: []fakeRow{
					{values: []any{"expense", "UZS", "125000.50", int64(300)}},
					{values: []any{"income", "USD", "99.99", int64(4)}},
				},
			}, nil
		},
	}
	repo := NewStatsRepository(db)

	out, err := repo.TransactionVolume(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	if !out[0].Total.Equal(decimal.RequireFromString("125000.50")) {
		t.Fatalf("expected exact decimal 125000.50, got %s", out[0].Total)
	}
	if out[1].Type != "income" || out[1].Currency != "USD" || out[1].Count != 4 {
		t.Fatalf("unexpected bucket: %+v", out[1])
	}
	// No date bounds means no WHERE clause and no args.
	if strings.Contains(db.lastQuery, "WHERE") {
		t.Fatalf("expected no WHERE with open bounds: %s", db.lastQuery)
	}
	if len(db.lastArgs) != 0 {
		t.Fatalf("expected no args, got %v", db.lastArgs)
	}
}

func TestTransactionVolume_DateBounds(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	db := &fakeDB{}
	repo := NewStatsRepository(db)

	if _, err := repo.TransactionVolume(context.Background(), from, to); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(db.lastQuery, "WHERE date >= $1 AND date < $2") {
		t.Fatalf("expected both bounds: %s", db.lastQuery)
	}
	if len(db.lastArgs) != 2 {
		t.Fatalf("expected 2 args, got %d", len(db.lastArgs))
	}

	// Only an upper bound renumbers the placeholder.
	if _, err := repo.TransactionVolume(context.Background(), time.Time{}, to); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(db.lastQuery, "WHERE date < $1") {
		t.Fatalf("expected single upper bound: %s", db.lastQuery)
	}
}

func TestTransactionVolume_BadDecimal(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return &fakeRowScanner{
				rows: []fakeRow{{values: []any{"expense", "UZS", "not-a-number", int64(1)}}},
			}, nil
		},
	}
	repo := NewStatsRepository(db)

	if _, err := repo.TransactionVolume(context.Background(), time.Time{}, time.Time{}); err == nil {
		t.Fatalf("expected decimal parse error")
	}
}

// ------------------------------------------------------------
// DB ERROR
// ------------------------------------------------------------

func TestStatsRepository_DBError(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return nil, errors.New("db failure")
		},
	}
	repo := NewStatsRepository(db)

	if _, err := repo.CountUsers(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if _, err := repo.TransactionVolume(context.Background(), time.Time{}, time.Time{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
