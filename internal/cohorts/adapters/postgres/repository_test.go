package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
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
		case *time.Time:
			v, ok := row.values[i].(time.Time)
			if !ok {
				return errors.New("type assertion to time.Time failed")
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
	QueryFn    func(ctx context.Context, query string, args ...any) (RowScanner, error)
	lastQuery  string
	lastArgs   []any
	queryCount int
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	f.queryCount++
	f.lastQuery = query
	f.lastArgs = args
	if f.QueryFn != nil {
		return f.QueryFn(ctx, query, args...)
	}
	return &fakeRowScanner{}, nil
}

// ------------------------------------------------------------
// ANCHOR SOURCES
// ------------------------------------------------------------

func TestCohortRepository_UserRegistrations(t *testing.T) {
	t1 := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)

	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "FROM users") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "created_at IS NOT NULL") {
				t.Fatalf("expected null guard in query: %s", query)
			}
			if !strings.Contains(query, "ORDER BY created_at ASC") {
				t.Fatalf("expected ascending order: %s", query)
			}
			return &fakeRowScanner{
				rows: []fakeRow{
					{values: []any{int64(1), t1}},
					{values: []any{int64(2), t2}},
				},
			}, nil
		},
	}

	repo := NewCohortRepository(db)

	rows, err := repo.UserRegistrations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserID != 1 || !rows[0].At.Equal(t1) {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
}

func TestCohortRepository_TransactionTimes(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "FROM transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			return &fakeRowScanner{}, nil
		},
	}

	repo := NewCohortRepository(db)
	if _, err := repo.TransactionTimes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCohortRepository_PaymentHistory(t *testing.T) {
	at := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "FROM payment_history") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "status") {
				t.Fatalf("expected status column in query: %s", query)
			}
			return &fakeRowScanner{
				rows: []fakeRow{
					{values: []any{int64(1), at, "success"}},
					{values: []any{int64(2), at, "failed"}},
				},
			}, nil
		},
	}

	repo := NewCohortRepository(db)

	rows, err := repo.PaymentHistory(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Status filtering happens in the domain, not in SQL.
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows including failed, got %d", len(rows))
	}
	if rows[1].Status != "failed" {
		t.Fatalf("expected raw status preserved, got %s", rows[1].Status)
	}
}

func TestCohortRepository_SubscriptionStarts(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "FROM user_subscriptions") {
				t.Fatalf("unexpected query: %s", query)
			}
			return &fakeRowScanner{}, nil
		},
	}

	repo := NewCohortRepository(db)
	if _, err := repo.SubscriptionStarts(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ------------------------------------------------------------
// ACTIVITY READS
// ------------------------------------------------------------

func TestCohortRepository_TransactionActivity(t *testing.T) {
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	w1 := from.AddDate(0, 0, 7)

	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "user_id = ANY($1)") {
				t.Fatalf("expected array membership filter: %s", query)
			}
			if !strings.Contains(query, "created_at >= $2") || !strings.Contains(query, "created_at < $3") {
				t.Fatalf("expected half-open span bounds: %s", query)
			}
			if len(args) != 3 {
				t.Fatalf("expected 3 args, got %d", len(args))
			}
			return &fakeRowScanner{
				rows: []fakeRow{
					{values: []any{int64(1), w1}},
					{values: []any{int64(1), w1.Add(time.Hour)}},
					{values: []any{int64(2), w1}},
				},
			}, nil
		},
	}

	repo := NewCohortRepository(db)

	m, err := repo.TransactionActivity(context.Background(), []int64{1, 2, 3}, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("expected 2 users with activity, got %d", len(m))
	}
	if len(m[1]) != 2 {
		t.Fatalf("expected 2 events for user 1, got %d", len(m[1]))
	}
	// Span bounds are passed in UTC.
	gotFrom, ok := db.lastArgs[1].(time.Time)
	if !ok || !gotFrom.Equal(from) {
		t.Fatalf("expected from=%v, got %v", from, db.lastArgs[1])
	}
}

func TestCohortRepository_MiniAppActivity(t *testing.T) {
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "FROM marketing_events") {
				t.Fatalf("unexpected query: %s", query)
			}
			if !strings.Contains(query, "source = 'mini_app'") {
				t.Fatalf("expected mini_app source filter: %s", query)
			}
			return &fakeRowScanner{}, nil
		},
	}

	repo := NewCohortRepository(db)

	m, err := repo.MiniAppActivity(context.Background(), []int64{1}, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
	if db.queryCount != 1 {
		t.Fatalf("expected exactly one query, got %d", db.queryCount)
	}
}

// ------------------------------------------------------------
// DB ERROR
// ------------------------------------------------------------

func TestCohortRepository_DBError(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return nil, errors.New("db failure")
		},
	}

	repo := NewCohortRepository(db)

	if _, err := repo.UserRegistrations(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if _, err := repo.TransactionActivity(context.Background(), []int64{1}, time.Time{}, time.Time{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestCohortRepository_RowsErrPropagated(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return &fakeRowScanner{err: errors.New("cursor broke")}, nil
		},
	}

	repo := NewCohortRepository(db)

	if _, err := repo.TransactionTimes(context.Background()); err == nil {
		t.Fatalf("expected rows.Err to propagate")
	}
}
