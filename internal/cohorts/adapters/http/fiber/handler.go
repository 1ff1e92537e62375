package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"finbot-admin-api/internal/cohorts/core/domain"
	"finbot-admin-api/internal/cohorts/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type CohortRetentionUseCase interface {
	Execute(ctx context.Context, in usecase.CohortRetentionInput) (*domain.Report, error)
}

type CohortHandler struct {
	uc CohortRetentionUseCase
}

func NewCohortHandler(uc CohortRetentionUseCase) *CohortHandler {
	return &CohortHandler{uc: uc}
}

// GetCohorts godoc
// @Summary Cohort retention analytics
// @Description Buckets users into calendar cohorts by anchor event and measures windowed activity retention
// @Tags Analytics
// @Produce json
// @Param anchor query string false "Anchor: acquisition | activation | billing | trial (default activation)"
// @Param active query string false "Activity definition: entries_only | miniapp_only | entries_or_miniapp | entries_and_miniapp"
// @Param bucket query string false "Bucket: daily | weekly | monthly (default weekly)"
// @Param windows query int false "Window count 1..52 (default 12)"
// @Param limit query int false "Keep only the most recent N cohorts"
// @Param start_date query string false "Anchor range start, YYYY-MM-DD"
// @Param end_date query string false "Anchor range end, YYYY-MM-DD, inclusive"
// @Param tz query string false "IANA timezone (default Asia/Tashkent)"
// @Success 200 {object} CohortReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/analytics/cohorts [get]
func (h *CohortHandler) GetCohorts(c *fiber.Ctx) error {
	windows, err := queryInt(c, "windows")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid_windows", Message: "windows must be an integer",
		})
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid_limit", Message: "limit must be an integer",
		})
	}

	in := usecase.CohortRetentionInput{
		Anchor:    domain.Anchor(c.Query("anchor", "")),
		Active:    domain.ActivityDefinition(c.Query("active", "")),
		Bucket:    domain.Bucket(c.Query("bucket", "")),
		Windows:   windows,
		Limit:     limit,
		StartDate: c.Query("start_date", ""),
		EndDate:   c.Query("end_date", ""),
		Timezone:  c.Query("tz", ""),
	}

	report, err := h.uc.Execute(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidAnchor),
			errors.Is(err, usecase.ErrInvalidActivityDef),
			errors.Is(err, usecase.ErrInvalidBucket),
			errors.Is(err, usecase.ErrInvalidWindows),
			errors.Is(err, usecase.ErrInvalidLimit),
			errors.Is(err, usecase.ErrInvalidDateRange),
			errors.Is(err, usecase.ErrUnknownTimezone):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_parameters",
				Message: err.Error(),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	resp := CohortReportResponse{
		Rows:         make([]CohortRowResponse, 0, len(report.Rows)),
		TotalUsers:   report.TotalUsers,
		AvgRetention: report.AvgRetention,
	}
	if report.BestCohort != "" {
		best := report.BestCohort
		resp.BestCohort = &best
	}
	for _, r := range report.Rows {
		resp.Rows = append(resp.Rows, CohortRowResponse{
			CohortKey:  r.CohortKey,
			CohortDate: r.PeriodStart,
			CohortSize: r.CohortSize,
			Windows:    r.Windows,
			Absolute:   r.Absolute,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

func queryInt(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name, "")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
