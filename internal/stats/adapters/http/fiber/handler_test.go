package fiber_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "finbot-admin-api/internal/stats/adapters/http/fiber"
	"finbot-admin-api/internal/stats/core/domain"
	"finbot-admin-api/internal/stats/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Fake usecase implementing the interface that handler depends on.
type fakeGetOverviewUseCase struct {
	ExecuteFn func(ctx context.Context, in usecase.OverviewInput) (*domain.Overview, error)
	lastInput usecase.OverviewInput
	called    bool
}

func (f *fakeGetOverviewUseCase) Execute(ctx context.Context, in usecase.OverviewInput) (*domain.Overview, error) {
	f.called = true
	f.lastInput = in
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return nil, nil
}

func setupApp(t *testing.T, uc httpadapter.GetOverviewUseCase) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := httpadapter.NewStatsHandler(uc)
	app.Get("/api/stats", h.GetOverview)
	return app
}

// ------------------------------------------------------------
// SUCCESS
// ------------------------------------------------------------

func TestGetOverview_Success(t *testing.T) {
	uc := &fakeGetOverviewUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.OverviewInput) (*domain.Overview, error) {
			if in.StartDate != "2025-01-01" || in.EndDate != "2025-01-31" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Overview{
				TotalUsers:          1200,
				TotalTransactions:   54000,
				ActiveSubscriptions: 87,
				Volume: []domain.VolumeBucket{
					{Type: "expense", Currency: "UZS", Total: decimal.RequireFromString("125000.50"), Count: 300},
				},
			}, nil
		},
	}

	app := setupApp(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/api/stats?start_date=2025-01-01&end_date=2025-01-31", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var out struct {
		TotalUsers          int64 `json:"total_users"`
		TotalTransactions   int64 `json:"total_transactions"`
		ActiveSubscriptions int64 `json:"active_subscriptions"`
		Volume              []struct {
			Type     string `json:"type"`
			Currency string `json:"currency"`
			Total    string `json:"total"`
			Count    int64  `json:"count"`
		} `json:"volume"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if out.TotalUsers != 1200 || out.ActiveSubscriptions != 87 {
		t.Fatalf("unexpected body: %+v", out)
	}
	// Decimal totals serialize as strings, never floats.
	if len(out.Volume) != 1 || out.Volume[0].Total != "125000.5" {
		t.Fatalf("unexpected volume: %+v", out.Volume)
	}
}

// ------------------------------------------------------------
// ERRORS
// ------------------------------------------------------------

func TestGetOverview_InvalidDateRange(t *testing.T) {
	uc := &fakeGetOverviewUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.OverviewInput) (*domain.Overview, error) {
			return nil, usecase.ErrInvalidDateRange
		},
	}

	app := setupApp(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/api/stats?start_date=garbage", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestGetOverview_InternalError(t *testing.T) {
	uc := &fakeGetOverviewUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.OverviewInput) (*domain.Overview, error) {
			return nil, context.DeadlineExceeded
		},
	}

	app := setupApp(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.StatusCode)
	}
}
