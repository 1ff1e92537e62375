package fiber

import (
	"context"
	"errors"
	"net/http"

	"finbot-admin-api/internal/stats/core/domain"
	"finbot-admin-api/internal/stats/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type GetOverviewUseCase interface {
	Execute(ctx context.Context, in usecase.OverviewInput) (*domain.Overview, error)
}

type StatsHandler struct {
	uc GetOverviewUseCase
}

func NewStatsHandler(uc GetOverviewUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

// GetOverview godoc
// @Summary Dashboard overview stats
// @Description Headline counters and transaction volume by type and currency
// @Tags Stats
// @Produce json
// @Param start_date query string false "Volume range start, YYYY-MM-DD"
// @Param end_date query string false "Volume range end, YYYY-MM-DD, inclusive"
// @Success 200 {object} OverviewResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/stats [get]
func (h *StatsHandler) GetOverview(c *fiber.Ctx) error {
	in := usecase.OverviewInput{
		StartDate: c.Query("start_date", ""),
		EndDate:   c.Query("end_date", ""),
	}

	overview, err := h.uc.Execute(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidDateRange) {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_date_range",
				Message: err.Error(),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}

	resp := OverviewResponse{
		TotalUsers:          overview.TotalUsers,
		TotalTransactions:   overview.TotalTransactions,
		ActiveSubscriptions: overview.ActiveSubscriptions,
		Volume:              make([]VolumeBucketResponse, 0, len(overview.Volume)),
	}
	for _, b := range overview.Volume {
		resp.Volume = append(resp.Volume, VolumeBucketResponse{
			Type:     b.Type,
			Currency: b.Currency,
			Total:    b.Total.String(),
			Count:    b.Count,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}
