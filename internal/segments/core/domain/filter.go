package domain

import (
	"sort"
	"strings"
)

// Operator is the comparison applied by one segment filter. before/after are
// timestamp aliases of lt/gt; within_days means "timestamp >= now - N days".
type Operator string

const (
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpIn         Operator = "in"
	OpNotIn      Operator = "not_in"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpBetween    Operator = "between"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpWithinDays Operator = "within_days"
	OpIsNull     Operator = "is_null"
	OpNotNull    Operator = "not_null"
)

// Logic combines resolved filter sets: and = intersection, or = union.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

func (l Logic) Valid() bool {
	return l == LogicAnd || l == LogicOr
}

// Filter is one segmentation predicate against a "table.column" field.
type Filter struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value,omitempty"`
}

// Table returns the field's table prefix.
func (f Filter) Table() string {
	if i := strings.Index(f.Field, "."); i >= 0 {
		return f.Field[:i]
	}
	return f.Field
}

// Column returns the field's column part, "" when there is none.
func (f Filter) Column() string {
	if i := strings.Index(f.Field, "."); i >= 0 {
		return f.Field[i+1:]
	}
	return ""
}

type FieldType string

const (
	FieldString    FieldType = "string"
	FieldNumber    FieldType = "number"
	FieldTimestamp FieldType = "timestamp"
	FieldBoolean   FieldType = "boolean"
)

type FieldSpec struct {
	Group string    `json:"group"`
	Field string    `json:"field"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`
}

// Derived pseudo-fields are not backed by a table directly; they resolve an
// underlying concrete filter and complement it against the full user universe
// when the requested boolean is false.
const (
	DerivedTable               = "derived"
	FieldHasActiveSubscription = "derived.has_active_subscription"
	FieldHasCards              = "derived.has_cards"
)

// SupportedFields is the registry of segmentable fields. Columns not listed
// here are never queried; filters on them resolve to the empty set.
var SupportedFields = []FieldSpec{
	{Group: "Users", Field: "users.language", Label: "User Language", Type: FieldString},
	{Group: "Users", Field: "users.default_currency", Label: "User Default Currency", Type: FieldString},
	{Group: "Users", Field: "users.created_at", Label: "User Created At", Type: FieldTimestamp},
	{Group: "Users", Field: "users.is_premium", Label: "User Is Premium", Type: FieldBoolean},
	{Group: "Users", Field: "users.onboarding_stage", Label: "Onboarding Stage", Type: FieldString},
	{Group: "Users", Field: "users.timezone", Label: "User Timezone", Type: FieldString},
	{Group: "Users", Field: "users.terms_accepted_at", Label: "Terms Accepted At", Type: FieldTimestamp},
	{Group: "Users", Field: "users.privacy_accepted_at", Label: "Privacy Accepted At", Type: FieldTimestamp},
	{Group: "Users", Field: "users.is_blocked", Label: "User Is Blocked", Type: FieldBoolean},

	{Group: "Transactions", Field: "transactions.type", Label: "Transaction Type", Type: FieldString},
	{Group: "Transactions", Field: "transactions.currency", Label: "Transaction Currency", Type: FieldString},
	{Group: "Transactions", Field: "transactions.source", Label: "Transaction Source", Type: FieldString},
	{Group: "Transactions", Field: "transactions.date", Label: "Transaction Date", Type: FieldTimestamp},
	{Group: "Transactions", Field: "transactions.amount", Label: "Transaction Amount", Type: FieldNumber},
	{Group: "Transactions", Field: "transactions.category_id", Label: "Transaction Category", Type: FieldNumber},

	{Group: "Subscriptions", Field: "user_subscriptions.status", Label: "Subscription Status", Type: FieldString},
	{Group: "Subscriptions", Field: "user_subscriptions.plan_type", Label: "Subscription Plan Type", Type: FieldString},
	{Group: "Subscriptions", Field: "user_subscriptions.next_payment_date", Label: "Next Payment Date", Type: FieldTimestamp},
	{Group: "Subscriptions", Field: "user_subscriptions.cancelled_at", Label: "Subscription Cancelled At", Type: FieldTimestamp},

	{Group: "Cards", Field: "user_cards.is_active", Label: "Card Is Active", Type: FieldBoolean},

	{Group: "Marketing", Field: "marketing_events.event_name", Label: "Event Name", Type: FieldString},
	{Group: "Marketing", Field: "marketing_events.event_time", Label: "Event Time", Type: FieldTimestamp},
	{Group: "Marketing", Field: "marketing_events.action_source", Label: "Action Source", Type: FieldString},
	{Group: "Marketing", Field: "marketing_events.source", Label: "Source", Type: FieldString},

	{Group: "Usage", Field: "usage_events.feature", Label: "Usage Feature", Type: FieldString},
	{Group: "Usage", Field: "usage_events.created_at", Label: "Usage Created At", Type: FieldTimestamp},
	{Group: "Usage", Field: "input_usage.period_key", Label: "Input Usage Period Key", Type: FieldString},

	{Group: "Budgets", Field: "budgets.category_id", Label: "Budget Category", Type: FieldNumber},
	{Group: "Budgets", Field: "budgets.currency", Label: "Budget Currency", Type: FieldString},
	{Group: "Budgets", Field: "budgets.start_date", Label: "Budget Start Date", Type: FieldTimestamp},
	{Group: "Budgets", Field: "budgets.end_date", Label: "Budget End Date", Type: FieldTimestamp},

	{Group: "Notifications", Field: "user_notifications.code", Label: "Notification Code", Type: FieldString},
	{Group: "Notifications", Field: "user_notifications.sent_at", Label: "Notification Sent At", Type: FieldTimestamp},

	{Group: "Derived", Field: FieldHasActiveSubscription, Label: "Has Active Subscription", Type: FieldBoolean},
	{Group: "Derived", Field: FieldHasCards, Label: "Has Cards", Type: FieldBoolean},
}

// OperatorsByType constrains which operators make sense per field type.
var OperatorsByType = map[FieldType][]Operator{
	FieldString:    {OpEq, OpNeq, OpIn, OpNotIn, OpIsNull, OpNotNull},
	FieldNumber:    {OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpBetween, OpIn, OpNotIn, OpIsNull, OpNotNull},
	FieldTimestamp: {OpBefore, OpAfter, OpBetween, OpWithinDays, OpIsNull, OpNotNull},
	FieldBoolean:   {OpEq, OpNeq},
}

var fieldTypes = func() map[string]FieldType {
	m := make(map[string]FieldType, len(SupportedFields))
	for _, f := range SupportedFields {
		m[f.Field] = f.Type
	}
	return m
}()

// FieldTypeOf returns the registered type of a field, false when unknown.
func FieldTypeOf(field string) (FieldType, bool) {
	t, ok := fieldTypes[field]
	return t, ok
}

// OperatorAllowed reports whether op is valid for fields of type t.
func OperatorAllowed(t FieldType, op Operator) bool {
	for _, allowed := range OperatorsByType[t] {
		if allowed == op {
			return true
		}
	}
	return false
}

// UserSet is an in-memory set of user ids, the unit of composition for
// segment resolution. Never persisted.
type UserSet map[int64]struct{}

func NewUserSet(ids ...int64) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s UserSet) Add(id int64)      { s[id] = struct{}{} }
func (s UserSet) Has(id int64) bool { _, ok := s[id]; return ok }
func (s UserSet) Len() int          { return len(s) }

// IDs returns the members sorted ascending.
func (s UserSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Intersect probes the smaller operand against the larger one.
func Intersect(a, b UserSet) UserSet {
	if a.Len() == 0 || b.Len() == 0 {
		return UserSet{}
	}
	small, large := a, b
	if b.Len() < a.Len() {
		small, large = b, a
	}
	out := make(UserSet, small.Len())
	for id := range small {
		if large.Has(id) {
			out.Add(id)
		}
	}
	return out
}

func Union(a, b UserSet) UserSet {
	out := make(UserSet, a.Len()+b.Len())
	for id := range a {
		out.Add(id)
	}
	for id := range b {
		out.Add(id)
	}
	return out
}

// Difference returns a \ b.
func Difference(a, b UserSet) UserSet {
	out := make(UserSet, a.Len())
	for id := range a {
		if !b.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// UserSummary is the bounded profile shape shown in segment previews.
type UserSummary struct {
	ID          int64
	Username    string
	DisplayName string
	Language    string
}

// FieldOption is one selectable value for a field in the dashboard UI.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
