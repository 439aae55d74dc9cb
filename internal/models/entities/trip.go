package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trip is the top-level container a user plans markers and tours in.
type Trip struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	OwnerID   string    `gorm:"column:owner_id;index;not null" json:"owner_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Trip) TableName() string {
	return "trips"
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
