package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"roamio/cartographer/internal/models/entities"
)

// MarkerRepository handles marker table operations using GORM
type MarkerRepository struct {
	db *gorm.DB
}

func NewMarkerRepository(db *gorm.DB) *MarkerRepository {
	return &MarkerRepository{db: db}
}

func (r *MarkerRepository) Create(ctx context.Context, marker *entities.Marker) error {
	if err := r.db.WithContext(ctx).Create(marker).Error; err != nil {
		return fmt.Errorf("failed to create marker: %w", err)
	}
	return nil
}

// GetByID retrieves a marker by its ID. Returns nil, nil when not found.
func (r *MarkerRepository) GetByID(ctx context.Context, markerID string) (*entities.Marker, error) {
	var marker entities.Marker

	err := r.db.WithContext(ctx).
		Where("id = ?", markerID).
		First(&marker).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch marker: %w", err)
	}

	return &marker, nil
}

func (r *MarkerRepository) ListByTrip(ctx context.Context, tripID string) ([]entities.Marker, error) {
	var markers []entities.Marker

	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at").
		Find(&markers).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch markers: %w", err)
	}

	return markers, nil
}

// ListByIDs fetches markers for a set of IDs, keyed by ID for stitching
// into ordered occurrence lists.
func (r *MarkerRepository) ListByIDs(ctx context.Context, ids []string) (map[string]entities.Marker, error) {
	var markers []entities.Marker

	if len(ids) == 0 {
		return map[string]entities.Marker{}, nil
	}

	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&markers).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch markers by ids: %w", err)
	}

	byID := make(map[string]entities.Marker, len(markers))
	for _, m := range markers {
		byID[m.ID] = m
	}
	return byID, nil
}

func (r *MarkerRepository) Update(ctx context.Context, marker *entities.Marker) error {
	if err := r.db.WithContext(ctx).Save(marker).Error; err != nil {
		return fmt.Errorf("failed to update marker: %w", err)
	}
	return nil
}

// Delete removes a marker along with its tour associations and any routes
// that reference it.
func (r *MarkerRepository) Delete(ctx context.Context, markerID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("marker_id = ?", markerID).Delete(&entities.TourMarker{}).Error; err != nil {
			return err
		}
		if err := tx.Where("from_marker_id = ? OR to_marker_id = ?", markerID, markerID).
			Delete(&entities.Route{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", markerID).Delete(&entities.Marker{}).Error
	})

	if err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	return nil
}
