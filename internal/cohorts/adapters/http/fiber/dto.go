package fiber

import "time"

type CohortRowResponse struct {
	CohortKey  string             `json:"cohort_key"`
	CohortDate time.Time          `json:"cohort_date"`
	CohortSize int                `json:"cohort_size"`
	Windows    map[string]float64 `json:"windows"`
	Absolute   map[string]int     `json:"absolute"`
}

type CohortReportResponse struct {
	Rows         []CohortRowResponse `json:"rows"`
	TotalUsers   int                 `json:"total_users"`
	AvgRetention map[string]float64  `json:"avg_retention"`
	BestCohort   *string             `json:"best_cohort"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_anchor"`
	Message string `json:"message" example:"invalid anchor"`
}
