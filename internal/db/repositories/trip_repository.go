package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"roamio/cartographer/internal/models/entities"
)

// TripRepository handles trip table operations using GORM
type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *entities.Trip) error {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

// GetByID retrieves a trip by its ID. Returns nil, nil when not found.
func (r *TripRepository) GetByID(ctx context.Context, tripID string) (*entities.Trip, error) {
	var trip entities.Trip

	err := r.db.WithContext(ctx).
		Where("id = ?", tripID).
		First(&trip).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch trip: %w", err)
	}

	return &trip, nil
}

func (r *TripRepository) ListByOwner(ctx context.Context, ownerID string) ([]entities.Trip, error) {
	var trips []entities.Trip

	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&trips).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch trips: %w", err)
	}

	return trips, nil
}

// Delete removes a trip and everything under it: routes, marker
// associations, tours (including nested sub-tours) and markers. The
// cascade is explicit here rather than delegated to FK constraints.
func (r *TripRepository) Delete(ctx context.Context, tripID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tourIDs := tx.Model(&entities.Tour{}).Select("id").Where("trip_id = ?", tripID)

		if err := tx.Where("tour_id IN (?)", tourIDs).Delete(&entities.Route{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tour_id IN (?)", tourIDs).Delete(&entities.TourMarker{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", tripID).Delete(&entities.Tour{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", tripID).Delete(&entities.Marker{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", tripID).Delete(&entities.Trip{}).Error
	})

	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return nil
}
