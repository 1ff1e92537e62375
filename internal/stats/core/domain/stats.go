package domain

import "github.com/shopspring/decimal"

// Overview is the dashboard's headline counters plus transaction volume.
type Overview struct {
	TotalUsers          int64
	TotalTransactions   int64
	ActiveSubscriptions int64
	Volume              []VolumeBucket
}

// VolumeBucket is the summed transaction amount for one type+currency pair.
// Amounts are summed exactly, never as floats.
type VolumeBucket struct {
	Type     string
	Currency string
	Total    decimal.Decimal
	Count    int64
}
