package entities

import "time"

// QuotaCounter tracks routing-provider requests for one calendar-month
// period, e.g. "2025-06". Rows are created lazily on first request within
// a period and never deleted.
type QuotaCounter struct {
	Period        string    `db:"period" gorm:"column:period;primaryKey"`
	RequestCount  int       `db:"request_count" gorm:"column:request_count;not null;default:0"`
	LastRequestAt time.Time `db:"last_request_at" gorm:"column:last_request_at"`
}

func (QuotaCounter) TableName() string {
	return "quota_counters"
}
