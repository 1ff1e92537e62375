package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"finbot-admin-api/internal/segments/core/domain"
	"finbot-admin-api/internal/segments/core/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidLogic  = errors.New("invalid logic")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrEmptyMessage  = errors.New("broadcast message is empty")
)

const (
	defaultSampleSize = 20
	maxSampleSize     = 50
)

// SegmentResult carries the resolved user-id set. Explicit is false when no
// filters were supplied at all — a distinguished "no segment" outcome that
// callers must not confuse with an explicit segment matching nobody.
type SegmentResult struct {
	Users    domain.UserSet
	Explicit bool
}

type ResolveSegmentUseCase struct {
	reader      ports.SegmentReaderPort
	broadcaster ports.BroadcastPort
}

func NewResolveSegmentUseCase(reader ports.SegmentReaderPort, broadcaster ports.BroadcastPort) *ResolveSegmentUseCase {
	return &ResolveSegmentUseCase{reader: reader, broadcaster: broadcaster}
}

// Resolve folds the ordered filter list into one user-id set. Filters are
// resolved left to right; order never changes the final set, only which
// filter triggers the AND short-circuit.
func (uc *ResolveSegmentUseCase) Resolve(ctx context.Context, filters []domain.Filter, logic domain.Logic) (SegmentResult, error) {
	if logic == "" {
		logic = domain.LogicAnd
	}
	if !logic.Valid() {
		return SegmentResult{}, ErrInvalidLogic
	}
	for _, f := range filters {
		if f.Field == "" || f.Op == "" {
			return SegmentResult{}, ErrInvalidFilter
		}
	}
	if len(filters) == 0 {
		return SegmentResult{Users: domain.UserSet{}}, nil
	}
	if logic == domain.LogicOr {
		return uc.resolveUnion(ctx, filters)
	}
	return uc.resolveIntersection(ctx, filters)
}

// resolveIntersection keeps a running intersection and stops resolving once
// it is empty: no later filter can add members under AND.
func (uc *ResolveSegmentUseCase) resolveIntersection(ctx context.Context, filters []domain.Filter) (SegmentResult, error) {
	var current domain.UserSet
	for i, f := range filters {
		set, err := uc.resolveOne(ctx, f)
		if err != nil {
			return SegmentResult{}, err
		}
		if i == 0 {
			current = set
		} else {
			current = domain.Intersect(current, set)
		}
		if current.Len() == 0 {
			break
		}
	}
	return SegmentResult{Users: current, Explicit: true}, nil
}

// resolveUnion has no valid short-circuit, so the independent per-filter
// resolutions run concurrently.
func (uc *ResolveSegmentUseCase) resolveUnion(ctx context.Context, filters []domain.Filter) (SegmentResult, error) {
	sets := make([]domain.UserSet, len(filters))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range filters {
		i, f := i, f
		g.Go(func() error {
			set, err := uc.resolveOne(gctx, f)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SegmentResult{}, err
	}

	out := domain.UserSet{}
	for _, s := range sets {
		out = domain.Union(out, s)
	}
	return SegmentResult{Users: out, Explicit: true}, nil
}

func (uc *ResolveSegmentUseCase) resolveOne(ctx context.Context, f domain.Filter) (domain.UserSet, error) {
	if f.Table() == domain.DerivedTable {
		return uc.resolveDerived(ctx, f)
	}
	return uc.reader.ResolveFilter(ctx, f)
}

// resolveDerived maps a boolean pseudo-field onto its underlying concrete
// filter; a false value takes the complement against all user ids. Unknown
// derived fields match nobody.
func (uc *ResolveSegmentUseCase) resolveDerived(ctx context.Context, f domain.Filter) (domain.UserSet, error) {
	if f.Op != domain.OpEq {
		return domain.UserSet{}, nil
	}

	var underlying domain.Filter
	switch f.Field {
	case domain.FieldHasActiveSubscription:
		underlying = domain.Filter{Field: "user_subscriptions.status", Op: domain.OpEq, Value: "active"}
	case domain.FieldHasCards:
		underlying = domain.Filter{Field: "user_cards.is_active", Op: domain.OpEq, Value: true}
	default:
		return domain.UserSet{}, nil
	}

	set, err := uc.reader.ResolveFilter(ctx, underlying)
	if err != nil {
		return nil, err
	}
	if truthy(f.Value) {
		return set, nil
	}
	all, err := uc.reader.AllUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Difference(all, set), nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}

// SegmentPreview is the bounded view of a resolved audience.
type SegmentPreview struct {
	Count           int
	UserIDs         []int64
	Sample          []domain.UserSummary
	DefaultAudience bool
}

func (uc *ResolveSegmentUseCase) Preview(ctx context.Context, filters []domain.Filter, logic domain.Logic, sampleSize int) (*SegmentPreview, error) {
	res, err := uc.Resolve(ctx, filters, logic)
	if err != nil {
		return nil, err
	}
	if !res.Explicit {
		return &SegmentPreview{
			UserIDs:         []int64{},
			Sample:          []domain.UserSummary{},
			DefaultAudience: true,
		}, nil
	}

	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	if sampleSize > maxSampleSize {
		sampleSize = maxSampleSize
	}

	ids := res.Users.IDs()
	sample := []domain.UserSummary{}
	if n := min(sampleSize, len(ids)); n > 0 {
		sample, err = uc.reader.UserSummaries(ctx, ids[:n])
		if err != nil {
			return nil, err
		}
	}

	return &SegmentPreview{Count: len(ids), UserIDs: ids, Sample: sample}, nil
}

type BroadcastInput struct {
	Message string
	Filters []domain.Filter
	Logic   domain.Logic
}

// StatusEmptySegment marks a broadcast that resolved an explicit segment with
// no members and was therefore never dispatched.
const StatusEmptySegment = "empty_segment"

// Broadcast resolves the audience and hands it to the bot backend. With no
// filters the bot falls back to its own default audience policy.
func (uc *ResolveSegmentUseCase) Broadcast(ctx context.Context, in BroadcastInput) (domain.BroadcastReceipt, error) {
	if strings.TrimSpace(in.Message) == "" {
		return domain.BroadcastReceipt{}, ErrEmptyMessage
	}

	res, err := uc.Resolve(ctx, in.Filters, in.Logic)
	if err != nil {
		return domain.BroadcastReceipt{}, err
	}

	b := domain.Broadcast{ID: uuid.New(), Message: in.Message}
	if res.Explicit {
		b.UserIDs = res.Users.IDs()
		if len(b.UserIDs) == 0 {
			return domain.BroadcastReceipt{ID: b.ID, Status: StatusEmptySegment}, nil
		}
	}
	return uc.broadcaster.SendBroadcast(ctx, b)
}

// FiltersMeta describes the segmentation surface for the dashboard: the field
// registry, the operators legal per type, and selectable value options.
type FiltersMeta struct {
	Fields    []domain.FieldSpec
	Operators map[domain.FieldType][]domain.Operator
	Options   map[string][]domain.FieldOption
}

// Fields whose options are enumerated from distinct stored values.
var enumerableFields = []string{
	"users.language",
	"users.default_currency",
	"users.onboarding_stage",
	"users.timezone",
	"transactions.currency",
	"transactions.source",
	"marketing_events.event_name",
	"marketing_events.action_source",
	"marketing_events.source",
	"usage_events.feature",
	"input_usage.period_key",
	"budgets.currency",
	"user_notifications.code",
}

func (uc *ResolveSegmentUseCase) FiltersMeta(ctx context.Context) (*FiltersMeta, error) {
	options := make(map[string][]domain.FieldOption)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, field := range enumerableFields {
		field := field
		g.Go(func() error {
			values, err := uc.reader.DistinctValues(gctx, field)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return nil
			}
			opts := make([]domain.FieldOption, 0, len(values))
			for _, v := range values {
				opts = append(opts, domain.FieldOption{Value: v, Label: v})
			}
			mu.Lock()
			options[field] = opts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fixed enums owned by the bot, not enumerated from data.
	options["transactions.type"] = []domain.FieldOption{
		{Value: "income", Label: "income"},
		{Value: "expense", Label: "expense"},
	}
	options["user_subscriptions.status"] = []domain.FieldOption{
		{Value: "active", Label: "active"},
		{Value: "payment_failed", Label: "payment_failed"},
		{Value: "cancelled", Label: "cancelled"},
	}
	options["user_subscriptions.plan_type"] = []domain.FieldOption{
		{Value: "weekly", Label: "weekly"},
		{Value: "monthly", Label: "monthly"},
	}

	return &FiltersMeta{
		Fields:    domain.SupportedFields,
		Operators: domain.OperatorsByType,
		Options:   options,
	}, nil
}
