package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"roamio/cartographer/internal/models/entities"
)

// TourRepository handles tour table operations using GORM
type TourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) Create(ctx context.Context, tour *entities.Tour) error {
	if err := r.db.WithContext(ctx).Create(tour).Error; err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

// GetByID retrieves a tour by its ID. Returns nil, nil when not found.
func (r *TourRepository) GetByID(ctx context.Context, tourID string) (*entities.Tour, error) {
	var tour entities.Tour

	err := r.db.WithContext(ctx).
		Where("id = ?", tourID).
		First(&tour).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch tour: %w", err)
	}

	return &tour, nil
}

func (r *TourRepository) ListByTrip(ctx context.Context, tripID string) ([]entities.Tour, error) {
	var tours []entities.Tour

	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("position").
		Find(&tours).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch tours: %w", err)
	}

	return tours, nil
}

func (r *TourRepository) Update(ctx context.Context, tour *entities.Tour) error {
	if err := r.db.WithContext(ctx).Save(tour).Error; err != nil {
		return fmt.Errorf("failed to update tour: %w", err)
	}
	return nil
}

// ListChildren returns the sub-tours directly under a parent tour, in
// position order.
func (r *TourRepository) ListChildren(ctx context.Context, parentTourID string) ([]entities.Tour, error) {
	var tours []entities.Tour

	err := r.db.WithContext(ctx).
		Where("parent_tour_id = ?", parentTourID).
		Order("position").
		Find(&tours).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch sub-tours: %w", err)
	}

	return tours, nil
}

// SiblingNameExists reports whether another tour with the same
// case-insensitive name exists under the same parent within a trip.
func (r *TourRepository) SiblingNameExists(ctx context.Context, tripID string, parentTourID *string, name string, excludeTourID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.Tour{}).
		Where("trip_id = ?", tripID).
		Where("LOWER(name) = LOWER(?)", name)

	if parentTourID == nil {
		query = query.Where("parent_tour_id IS NULL")
	} else {
		query = query.Where("parent_tour_id = ?", *parentTourID)
	}
	if excludeTourID != "" {
		query = query.Where("id <> ?", excludeTourID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check sibling names: %w", err)
	}
	return count > 0, nil
}

// Delete removes the tour, its marker associations, its routes and,
// recursively, its sub-tours.
func (r *TourRepository) Delete(ctx context.Context, tourID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTourTree(tx, tourID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	return nil
}

func deleteTourTree(tx *gorm.DB, tourID string) error {
	var childIDs []string
	if err := tx.Model(&entities.Tour{}).
		Where("parent_tour_id = ?", tourID).
		Pluck("id", &childIDs).Error; err != nil {
		return err
	}
	for _, childID := range childIDs {
		if err := deleteTourTree(tx, childID); err != nil {
			return err
		}
	}

	if err := tx.Where("tour_id = ?", tourID).Delete(&entities.Route{}).Error; err != nil {
		return err
	}
	if err := tx.Where("tour_id = ?", tourID).Delete(&entities.TourMarker{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", tourID).Delete(&entities.Tour{}).Error
}
