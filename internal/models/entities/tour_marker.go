package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TourMarker is one occurrence of a marker within a tour at an integer
// position. There is deliberately no uniqueness constraint on
// (tour_id, marker_id): the same marker may appear multiple times in a
// tour, once per association row.
type TourMarker struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	TourID    string    `gorm:"column:tour_id;index;not null" json:"tour_id"`
	MarkerID  string    `gorm:"column:marker_id;index;not null" json:"marker_id"`
	Position  int       `gorm:"column:position;not null" json:"position"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TourMarker) TableName() string {
	return "tour_markers"
}

func (tm *TourMarker) BeforeCreate(tx *gorm.DB) error {
	if tm.ID == "" {
		tm.ID = uuid.NewString()
	}
	return nil
}
