package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Route is a pre-computed path between two specific markers. Reordering
// a tour never touches its routes, so rows can go stale; consumers filter
// them against the current marker order at read time.
type Route struct {
	ID             string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	TourID         string    `gorm:"column:tour_id;index;not null" json:"tour_id"`
	FromMarkerID   string    `gorm:"column:from_marker_id;not null" json:"from_marker_id"`
	ToMarkerID     string    `gorm:"column:to_marker_id;not null" json:"to_marker_id"`
	Mode           string    `gorm:"column:mode;not null" json:"mode"`
	DistanceMeters float64   `gorm:"column:distance_meters" json:"distance_meters"`
	DurationSecs   float64   `gorm:"column:duration_secs" json:"duration_secs"`
	Geometry       string    `gorm:"column:geometry;type:text" json:"geometry"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Route) TableName() string {
	return "routes"
}

func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
