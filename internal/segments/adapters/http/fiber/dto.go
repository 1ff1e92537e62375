package fiber

import "finbot-admin-api/internal/segments/core/domain"

// PreviewSegmentRequest carries the ordered filter list and combination
// logic.
// @Description Segment preview payload
type PreviewSegmentRequest struct {
	Filters    []domain.Filter `json:"filters"`
	Logic      string          `json:"logic"`
	SampleSize int             `json:"sample_size"`
}

type UserSummaryResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Language    string `json:"language,omitempty"`
}

type PreviewSegmentResponse struct {
	Count           int                   `json:"count"`
	Sample          []UserSummaryResponse `json:"sample"`
	DefaultAudience bool                  `json:"default_audience"`
}

type BroadcastRequest struct {
	Message string          `json:"message"`
	Filters []domain.Filter `json:"filters"`
	Logic   string          `json:"logic"`
}

type BroadcastResponse struct {
	BroadcastID string `json:"broadcast_id"`
	Targeted    int    `json:"targeted"`
	Status      string `json:"status"`
}

type FiltersMetaResponse struct {
	Fields    []domain.FieldSpec                     `json:"fields"`
	Operators map[domain.FieldType][]domain.Operator `json:"operators"`
	Options   map[string][]domain.FieldOption        `json:"options"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_filter"`
	Message string `json:"message" example:"invalid filter"`
}
