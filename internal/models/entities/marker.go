package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Marker is a geographic point of interest within a trip.
type Marker struct {
	ID             string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	TripID         string    `gorm:"column:trip_id;index;not null" json:"trip_id"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	Latitude       float64   `gorm:"column:latitude;type:numeric(10,6);not null" json:"latitude"`
	Longitude      float64   `gorm:"column:longitude;type:numeric(10,6);not null" json:"longitude"`
	Category       string    `gorm:"column:category" json:"category"`
	EstimatedHours *float64  `gorm:"column:estimated_hours" json:"estimated_hours,omitempty"`
	Notes          *string   `gorm:"column:notes" json:"notes,omitempty"`
	URL            *string   `gorm:"column:url" json:"url,omitempty"`
	IsUnesco       bool      `gorm:"column:is_unesco;default:false" json:"is_unesco"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Marker) TableName() string {
	return "markers"
}

func (m *Marker) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
