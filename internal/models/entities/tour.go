package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tour is a named, ordered sub-collection of markers within a trip.
// A tour may be nested under a parent tour; Position orders it among
// the parent's directly visible children.
type Tour struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	TripID       string    `gorm:"column:trip_id;index;not null" json:"trip_id"`
	ParentTourID *string   `gorm:"column:parent_tour_id;index" json:"parent_tour_id,omitempty"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Position     int       `gorm:"column:position;default:0" json:"position"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Tour) TableName() string {
	return "tours"
}

func (t *Tour) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
