package fiber

type VolumeBucketResponse struct {
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Count    int64  `json:"count"`
}

type OverviewResponse struct {
	TotalUsers          int64                  `json:"total_users"`
	TotalTransactions   int64                  `json:"total_transactions"`
	ActiveSubscriptions int64                  `json:"active_subscriptions"`
	Volume              []VolumeBucketResponse `json:"volume"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_date_range"`
	Message string `json:"message" example:"invalid date range"`
}
