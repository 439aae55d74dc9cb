package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"roamio/cartographer/internal/models/entities"
)

// RouteRepository handles pre-computed route rows. Routes are never
// deleted when a tour is reordered, only filtered at read time, so the
// table can hold stale pairs.
type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Upsert replaces any existing route for the same pair and mode, so
// re-sorting a tour refreshes its legs instead of stacking duplicates.
func (r *RouteRepository) Upsert(ctx context.Context, route *entities.Route) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tour_id = ? AND from_marker_id = ? AND to_marker_id = ? AND mode = ?",
			route.TourID, route.FromMarkerID, route.ToMarkerID, route.Mode).
			Delete(&entities.Route{}).Error; err != nil {
			return err
		}
		return tx.Create(route).Error
	})

	if err != nil {
		return fmt.Errorf("failed to upsert route: %w", err)
	}
	return nil
}

func (r *RouteRepository) ListByTour(ctx context.Context, tourID string) ([]entities.Route, error) {
	var routes []entities.Route

	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("created_at").
		Find(&routes).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch routes: %w", err)
	}

	return routes, nil
}

