package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"roamio/cartographer/internal/models/entities"
)

// TourMarkerRepository maintains the ordered marker<->tour association
// table. Positions are dense 0..n-1 immediately after a reorder or an
// append sequence from empty; a plain detach leaves gaps until the next
// reorder.
type TourMarkerRepository struct {
	db *gorm.DB
}

func NewTourMarkerRepository(db *gorm.DB) *TourMarkerRepository {
	return &TourMarkerRepository{db: db}
}

// Attach appends one occurrence of a marker at max(position)+1, or 0 for
// an empty tour. Re-attaching an already-present marker creates an
// additional row; duplicates are a supported use case.
func (r *TourMarkerRepository) Attach(ctx context.Context, tourID, markerID string) (*entities.TourMarker, error) {
	row := &entities.TourMarker{TourID: tourID, MarkerID: markerID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&entities.TourMarker{}).
			Where("tour_id = ?", tourID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPos).Error; err != nil {
			return err
		}

		row.Position = maxPos + 1
		return tx.Create(row).Error
	})

	if err != nil {
		return nil, fmt.Errorf("failed to attach marker: %w", err)
	}
	return row, nil
}

// DetachOne removes exactly one occurrence of the marker, the one at the
// lowest position when duplicates exist. Remaining rows are not
// renumbered. Returns false when no occurrence was found.
func (r *TourMarkerRepository) DetachOne(ctx context.Context, tourID, markerID string) (bool, error) {
	var detached bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row entities.TourMarker
		err := tx.Where("tour_id = ? AND marker_id = ?", tourID, markerID).
			Order("position").
			First(&row).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		if err := tx.Where("id = ?", row.ID).Delete(&entities.TourMarker{}).Error; err != nil {
			return err
		}
		detached = true
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("failed to detach marker: %w", err)
	}
	return detached, nil
}

// Reorder rewrites all association rows of the tour so position i holds
// markerIDs[i]. Duplicate IDs produce duplicate rows; IDs not previously
// attached become attached. All-or-nothing: a failed rewrite rolls back
// to the previous state.
func (r *TourMarkerRepository) Reorder(ctx context.Context, tourID string, markerIDs []string) ([]entities.TourMarker, error) {
	rows := make([]entities.TourMarker, 0, len(markerIDs))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tour_id = ?", tourID).Delete(&entities.TourMarker{}).Error; err != nil {
			return err
		}

		for i, markerID := range markerIDs {
			row := entities.TourMarker{TourID: tourID, MarkerID: markerID, Position: i}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to reorder tour markers: %w", err)
	}
	return rows, nil
}

// ApplyMixedOrder writes pre-computed positions for association rows (by
// row ID) and sub-tours (by tour ID) in one transaction, so a combined
// marker/sub-tour ordering commits atomically or not at all.
func (r *TourMarkerRepository) ApplyMixedOrder(ctx context.Context, rowPositions map[string]int, tourPositions map[string]int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for rowID, pos := range rowPositions {
			if err := tx.Model(&entities.TourMarker{}).
				Where("id = ?", rowID).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		for tourID, pos := range tourPositions {
			if err := tx.Model(&entities.Tour{}).
				Where("id = ?", tourID).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to apply mixed order: %w", err)
	}
	return nil
}

// ListByTour returns the tour's association rows in position order.
func (r *TourMarkerRepository) ListByTour(ctx context.Context, tourID string) ([]entities.TourMarker, error) {
	var rows []entities.TourMarker

	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("position").
		Find(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch tour markers: %w", err)
	}

	return rows, nil
}

// ListInLoadOrder returns the rows in insertion order, which is what the
// sorter is fed. This is not necessarily the display (position) order.
func (r *TourMarkerRepository) ListInLoadOrder(ctx context.Context, tourID string) ([]entities.TourMarker, error) {
	var rows []entities.TourMarker

	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("created_at, id").
		Find(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch tour markers: %w", err)
	}

	return rows, nil
}

func (r *TourMarkerRepository) CountByTour(ctx context.Context, tourID string) (int, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&entities.TourMarker{}).
		Where("tour_id = ?", tourID).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count tour markers: %w", err)
	}

	return int(count), nil
}
