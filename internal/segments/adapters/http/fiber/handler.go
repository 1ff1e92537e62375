package fiber

import (
	"context"
	"errors"
	"net/http"

	"finbot-admin-api/internal/segments/core/domain"
	"finbot-admin-api/internal/segments/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type SegmentUseCase interface {
	Preview(ctx context.Context, filters []domain.Filter, logic domain.Logic, sampleSize int) (*usecase.SegmentPreview, error)
	Broadcast(ctx context.Context, in usecase.BroadcastInput) (domain.BroadcastReceipt, error)
	FiltersMeta(ctx context.Context) (*usecase.FiltersMeta, error)
}

type SegmentHandler struct {
	uc SegmentUseCase
}

func NewSegmentHandler(uc SegmentUseCase) *SegmentHandler {
	return &SegmentHandler{uc: uc}
}

// PreviewSegment godoc
// @Summary Preview a segment
// @Description Resolves the filter combination and returns the audience size with a small profile sample
// @Tags Segments
// @Accept json
// @Produce json
// @Param request body PreviewSegmentRequest true "Filters and logic"
// @Success 200 {object} PreviewSegmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/segments/preview [post]
func (h *SegmentHandler) PreviewSegment(c *fiber.Ctx) error {
	var req PreviewSegmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	preview, err := h.uc.Preview(c.UserContext(), req.Filters, domain.Logic(req.Logic), req.SampleSize)
	if err != nil {
		return segmentError(c, err)
	}

	resp := PreviewSegmentResponse{
		Count:           preview.Count,
		Sample:          make([]UserSummaryResponse, 0, len(preview.Sample)),
		DefaultAudience: preview.DefaultAudience,
	}
	for _, s := range preview.Sample {
		resp.Sample = append(resp.Sample, UserSummaryResponse{
			ID:          s.ID,
			Username:    s.Username,
			DisplayName: s.DisplayName,
			Language:    s.Language,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// BroadcastSegment godoc
// @Summary Dispatch a broadcast to a segment
// @Description Resolves the audience and hands it to the bot backend for delivery
// @Tags Segments
// @Accept json
// @Produce json
// @Param request body BroadcastRequest true "Message, filters, logic"
// @Success 202 {object} BroadcastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/segments/broadcast [post]
func (h *SegmentHandler) BroadcastSegment(c *fiber.Ctx) error {
	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	receipt, err := h.uc.Broadcast(c.UserContext(), usecase.BroadcastInput{
		Message: req.Message,
		Filters: req.Filters,
		Logic:   domain.Logic(req.Logic),
	})
	if err != nil {
		return segmentError(c, err)
	}

	return c.Status(http.StatusAccepted).JSON(BroadcastResponse{
		BroadcastID: receipt.ID.String(),
		Targeted:    receipt.Targeted,
		Status:      receipt.Status,
	})
}

// GetFiltersMeta godoc
// @Summary Segmentation filter metadata
// @Description Returns the supported fields, operators per field type, and selectable value options
// @Tags Segments
// @Produce json
// @Success 200 {object} FiltersMetaResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/segments/filters [get]
func (h *SegmentHandler) GetFiltersMeta(c *fiber.Ctx) error {
	meta, err := h.uc.FiltersMeta(c.UserContext())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}

	return c.Status(http.StatusOK).JSON(FiltersMetaResponse{
		Fields:    meta.Fields,
		Operators: meta.Operators,
		Options:   meta.Options,
	})
}

func segmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidLogic),
		errors.Is(err, usecase.ErrInvalidFilter),
		errors.Is(err, usecase.ErrEmptyMessage):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_segment_request",
			Message: err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}
