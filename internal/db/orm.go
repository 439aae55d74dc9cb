package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"roamio/cartographer/internal/models/entities"
)

var PgDB *gorm.DB

func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	PgDB = db
	return db, nil
}

// Migrate creates or updates the schema for all entities. Cascade behavior
// lives in the repositories, not in FK constraints, so deleting a trip or
// tour is always an explicit, tested operation.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.Trip{},
		&entities.Marker{},
		&entities.Tour{},
		&entities.TourMarker{},
		&entities.Route{},
		&entities.QuotaCounter{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
