package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"finbot-admin-api/internal/segments/core/domain"
	"finbot-admin-api/internal/segments/core/ports"

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

// SegmentRepository resolves one filter per call against its owning table.
// Anything unresolvable — unknown table, unregistered column, operator not
// allowed for the table or the field type — yields an empty set, never an
// error: a filter that matches nobody must not abort the whole segment.
type SegmentRepository struct {
	db DB
}

func NewSegmentRepository(db DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

var _ ports.SegmentReaderPort = (*SegmentRepository)(nil)

// tableSpec says how a logical table maps back to internal user ids.
// idColumn holds the internal id directly; chatColumn holds the external
// chat identifier that needs the secondary users.telegram_id lookup.
type tableSpec struct {
	idColumn   string
	chatColumn string
	ops        map[domain.Operator]struct{} // nil means any registered operator
}

func opSet(ops ...domain.Operator) map[domain.Operator]struct{} {
	m := make(map[domain.Operator]struct{}, len(ops))
	for _, op := range ops {
		m[op] = struct{}{}
	}
	return m
}

var tables = map[string]tableSpec{
	"users":              {idColumn: "id"},
	"transactions":       {idColumn: "user_id"},
	"user_subscriptions": {idColumn: "user_id"},
	"budgets":            {idColumn: "user_id"},
	"user_notifications": {idColumn: "user_id"},
	"user_cards":         {idColumn: "user_id", ops: opSet(domain.OpEq, domain.OpNeq)},
	"marketing_events":   {idColumn: "user_id", chatColumn: "telegram_id"},
	"usage_events":       {idColumn: "user_id", chatColumn: "telegram_id"},
	"input_usage":        {chatColumn: "telegram_id", ops: opSet(domain.OpEq, domain.OpNeq, domain.OpIn, domain.OpNotIn)},
}

// registeredColumns whitelists every column that may appear in SQL. Built
// once from the field registry; client input never reaches the query text.
var registeredColumns = func() map[string]map[string]struct{} {
	m := make(map[string]map[string]struct{})
	for _, f := range domain.SupportedFields {
		filter := domain.Filter{Field: f.Field}
		table, column := filter.Table(), filter.Column()
		if table == domain.DerivedTable {
			continue
		}
		if m[table] == nil {
			m[table] = make(map[string]struct{})
		}
		m[table][column] = struct{}{}
	}
	return m
}()

// clauseFunc renders one WHERE condition with $1-based placeholders; ok=false
// means the operator/value pair cannot produce a usable condition.
type clauseFunc func(col string, v any) (cond string, args []any, ok bool)

func compareClause(sqlOp string) clauseFunc {
	return func(col string, v any) (string, []any, bool) {
		return fmt.Sprintf("%s %s $1", col, sqlOp), []any{v}, true
	}
}

var clauseBuilders = map[domain.Operator]clauseFunc{
	domain.OpEq:     compareClause("="),
	domain.OpNeq:    compareClause("<>"),
	domain.OpGt:     compareClause(">"),
	domain.OpGte:    compareClause(">="),
	domain.OpLt:     compareClause("<"),
	domain.OpLte:    compareClause("<="),
	domain.OpBefore: compareClause("<"),
	domain.OpAfter:  compareClause(">"),
	domain.OpIn: func(col string, v any) (string, []any, bool) {
		return fmt.Sprintf("%s = ANY($1)", col), []any{pq.Array(valueList(v))}, true
	},
	domain.OpNotIn: func(col string, v any) (string, []any, bool) {
		return fmt.Sprintf("NOT (%s = ANY($1))", col), []any{pq.Array(valueList(v))}, true
	},
	domain.OpBetween: betweenClause,
	domain.OpWithinDays: func(col string, v any) (string, []any, bool) {
		cutoff := time.Now().UTC().AddDate(0, 0, -daysValue(v))
		return fmt.Sprintf("%s >= $1", col), []any{cutoff}, true
	},
	domain.OpIsNull: func(col string, _ any) (string, []any, bool) {
		return fmt.Sprintf("%s IS NULL", col), nil, true
	},
	domain.OpNotNull: func(col string, _ any) (string, []any, bool) {
		return fmt.Sprintf("%s IS NOT NULL", col), nil, true
	},
}

// betweenClause is inclusive on both sides; a missing bound leaves that side
// unconstrained.
func betweenClause(col string, v any) (string, []any, bool) {
	lo, hi := bounds(v)
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("%s >= $1 AND %s <= $2", col, col), []any{lo, hi}, true
	case lo != nil:
		return fmt.Sprintf("%s >= $1", col), []any{lo}, true
	case hi != nil:
		return fmt.Sprintf("%s <= $1", col), []any{hi}, true
	}
	return "", nil, false
}

func bounds(v any) (lo, hi any) {
	list, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	if len(list) > 0 {
		lo = list[0]
	}
	if len(list) > 1 {
		hi = list[1]
	}
	return lo, hi
}

func valueList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// daysValue defaults to 0 when the value is not a usable number.
func daysValue(v any) int {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func (r *SegmentRepository) ResolveFilter(ctx context.Context, f domain.Filter) (domain.UserSet, error) {
	table, column := f.Table(), f.Column()

	spec, ok := tables[table]
	if !ok {
		return domain.UserSet{}, nil
	}
	if _, ok := registeredColumns[table][column]; !ok {
		return domain.UserSet{}, nil
	}
	if spec.ops != nil {
		if _, ok := spec.ops[f.Op]; !ok {
			return domain.UserSet{}, nil
		}
	}
	fieldType, ok := domain.FieldTypeOf(f.Field)
	if !ok || !domain.OperatorAllowed(fieldType, f.Op) {
		return domain.UserSet{}, nil
	}
	build, ok := clauseBuilders[f.Op]
	if !ok {
		return domain.UserSet{}, nil
	}
	cond, args, ok := build(column, f.Value)
	if !ok {
		return domain.UserSet{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(spec.selectColumns(), ", "), table, cond)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.UserSet{}
	chatIDs := make(map[int64]struct{})
	for rows.Next() {
		userID, chatID, err := spec.scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		switch {
		case userID.Valid:
			set.Add(userID.Int64)
		case chatID.Valid:
			chatIDs[chatID.Int64] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows carrying only an external chat id need the secondary lookup to
	// become usable user ids.
	if len(chatIDs) > 0 {
		mapped, err := r.mapChatIDs(ctx, chatIDs)
		if err != nil {
			return nil, err
		}
		for id := range mapped {
			set.Add(id)
		}
	}
	return set, nil
}

func (s tableSpec) selectColumns() []string {
	cols := make([]string, 0, 2)
	if s.idColumn != "" {
		cols = append(cols, s.idColumn)
	}
	if s.chatColumn != "" {
		cols = append(cols, s.chatColumn)
	}
	return cols
}

func (s tableSpec) scanIdentity(rows RowScanner) (userID, chatID sql.NullInt64, err error) {
	switch {
	case s.idColumn != "" && s.chatColumn != "":
		err = rows.Scan(&userID, &chatID)
	case s.idColumn != "":
		err = rows.Scan(&userID)
	default:
		err = rows.Scan(&chatID)
	}
	return userID, chatID, err
}

const mapChatIDsSQL = `
SELECT id
FROM users
WHERE telegram_id = ANY($1)`

func (r *SegmentRepository) mapChatIDs(ctx context.Context, chatIDs map[int64]struct{}) (domain.UserSet, error) {
	ids := make([]int64, 0, len(chatIDs))
	for id := range chatIDs {
		ids = append(ids, id)
	}

	rows, err := r.db.QueryContext(ctx, mapChatIDsSQL, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.UserSet{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

const allUserIDsSQL = `
SELECT id
FROM users
ORDER BY id ASC`

func (r *SegmentRepository) AllUserIDs(ctx context.Context) (domain.UserSet, error) {
	rows, err := r.db.QueryContext(ctx, allUserIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.UserSet{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

const userSummariesSQL = `
SELECT id, username, display_name, language
FROM users
WHERE id = ANY($1)
ORDER BY id ASC`

func (r *SegmentRepository) UserSummaries(ctx context.Context, userIDs []int64) ([]domain.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, userSummariesSQL, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.UserSummary, 0, len(userIDs))
	for rows.Next() {
		var (
			id                              int64
			username, displayName, language sql.NullString
		)
		if err := rows.Scan(&id, &username, &displayName, &language); err != nil {
			return nil, err
		}
		out = append(out, domain.UserSummary{
			ID:          id,
			Username:    username.String,
			DisplayName: displayName.String,
			Language:    language.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const distinctValuesLimit = 1000

func (r *SegmentRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	filter := domain.Filter{Field: field}
	table, column := filter.Table(), filter.Column()
	if _, ok := tables[table]; !ok {
		return nil, nil
	}
	if _, ok := registeredColumns[table][column]; !ok {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s ASC LIMIT %d",
		column, table, column, column, distinctValuesLimit,
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
