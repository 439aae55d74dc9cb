package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"roamio/cartographer/internal/common"
	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/db/repositories"
	"roamio/cartographer/internal/logging"
	"roamio/cartographer/internal/metrics"
	"roamio/cartographer/internal/models/dtos"
	"roamio/cartographer/internal/models/entities"
	"roamio/cartographer/internal/providers"
)

const matrixCacheTTL = 10 * time.Minute

// TourService owns tour membership and ordering: attach/detach/reorder
// of markers, the mixed marker/sub-tour ordering, and the
// proximity-sort flow that feeds the routing provider's matrix into the
// nearest-neighbor engine and persists the result.
type TourService struct {
	trips       *repositories.TripRepository
	tours       *repositories.TourRepository
	markers     *repositories.MarkerRepository
	tourMarkers *repositories.TourMarkerRepository
	routes      *repositories.RouteRepository
	quota       *QuotaService
	routing     providers.RoutingProvider
	cache       common.CacheInterface
	// Metrics is optional; when set, matrix cache hits and misses are counted
	Metrics *metrics.MetricsRegistry
}

func NewTourService(
	trips *repositories.TripRepository,
	tours *repositories.TourRepository,
	markers *repositories.MarkerRepository,
	tourMarkers *repositories.TourMarkerRepository,
	routes *repositories.RouteRepository,
	quota *QuotaService,
	routing providers.RoutingProvider,
	cache common.CacheInterface,
) *TourService {
	return &TourService{
		trips:       trips,
		tours:       tours,
		markers:     markers,
		tourMarkers: tourMarkers,
		routes:      routes,
		quota:       quota,
		routing:     routing,
		cache:       cache,
	}
}

// loadOwnedTour fetches the tour and verifies the caller owns its trip
func (s *TourService) loadOwnedTour(ctx context.Context, ownerID, tourID string) (*entities.Tour, error) {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, &ServiceError{Code: constants.ErrCodeNotFound, Message: "Tour not found"}
	}

	trip, err := s.trips.GetByID(ctx, tour.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.OwnerID != ownerID {
		return nil, &ServiceError{Code: constants.ErrCodeForbidden, Message: constants.GetErrorMessage(constants.ErrCodeForbidden)}
	}
	return tour, nil
}

// CreateTour creates a tour or sub-tour. Sibling names must be unique
// case-insensitively under the same parent.
func (s *TourService) CreateTour(ctx context.Context, ownerID, tripID string, req dtos.CreateTourReq) (*entities.Tour, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ServiceError{Code: constants.ErrCodeInvalidInput, Message: "Tour name is required"}
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.OwnerID != ownerID {
		return nil, &ServiceError{Code: constants.ErrCodeForbidden, Message: constants.GetErrorMessage(constants.ErrCodeForbidden)}
	}

	var siblings []entities.Tour
	if req.ParentTourID != nil {
		parent, err := s.tours.GetByID(ctx, *req.ParentTourID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.TripID != tripID {
			return nil, &ServiceError{
				Code:    constants.ErrCodeCrossTripReference,
				Message: "Parent tour does not belong to this trip",
			}
		}
		siblings, err = s.tours.ListChildren(ctx, *req.ParentTourID)
		if err != nil {
			return nil, err
		}
	}

	exists, err := s.tours.SiblingNameExists(ctx, tripID, req.ParentTourID, req.Name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ServiceError{
			Code:    constants.ErrCodeDuplicateTourName,
			Message: constants.GetErrorMessage(constants.ErrCodeDuplicateTourName),
		}
	}

	tour := &entities.Tour{
		TripID:       tripID,
		ParentTourID: req.ParentTourID,
		Name:         req.Name,
		Position:     len(siblings),
	}
	if err := s.tours.Create(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// RenameTour renames a tour, re-checking case-insensitive sibling
// uniqueness under the same parent.
func (s *TourService) RenameTour(ctx context.Context, ownerID, tourID, name string) (*entities.Tour, error) {
	tour, err := s.loadOwnedTour(ctx, ownerID, tourID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ServiceError{Code: constants.ErrCodeInvalidInput, Message: "Tour name is required"}
	}

	exists, err := s.tours.SiblingNameExists(ctx, tour.TripID, tour.ParentTourID, name, tourID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ServiceError{
			Code:    constants.ErrCodeDuplicateTourName,
			Message: constants.GetErrorMessage(constants.ErrCodeDuplicateTourName),
		}
	}

	tour.Name = name
	if err := s.tours.Update(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// ListTours returns every tour of a trip, nested ones included, in
// position order.
func (s *TourService) ListTours(ctx context.Context, ownerID, tripID string) ([]entities.Tour, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.OwnerID != ownerID {
		return nil, &ServiceError{Code: constants.ErrCodeForbidden, Message: constants.GetErrorMessage(constants.ErrCodeForbidden)}
	}
	return s.tours.ListByTrip(ctx, tripID)
}

// AttachMarker appends one occurrence of the marker to the tour.
// Attaching an already-present marker is allowed and adds another
// occurrence; attaching across trips is a business-rule violation and
// writes nothing.
func (s *TourService) AttachMarker(ctx context.Context, ownerID, tourID, markerID string) (*entities.TourMarker, error) {
	tour, err := s.loadOwnedTour(ctx, ownerID, tourID)
	if err != nil {
		return nil, err
	}

	marker, err := s.markers.GetByID(ctx, markerID)
	if err != nil {
		return nil, err
	}
	if marker == nil {
		return nil, &ServiceError{Code: constants.ErrCodeNotFound, Message: "Marker not found"}
	}
	if marker.TripID != tour.TripID {
		return nil, &ServiceError{
			Code:    constants.ErrCodeCrossTripReference,
			Message: constants.GetErrorMessage(constants.ErrCodeCrossTripReference),
		}
	}

	return s.tourMarkers.Attach(ctx, tourID, markerID)
}

// DetachMarker removes exactly one occurrence of the marker. Other
// occurrences stay, and remaining positions are not compacted until the
// next reorder.
func (s *TourService) DetachMarker(ctx context.Context, ownerID, tourID, markerID string) error {
	if _, err := s.loadOwnedTour(ctx, ownerID, tourID); err != nil {
		return err
	}

	detached, err := s.tourMarkers.DetachOne(ctx, tourID, markerID)
	if err != nil {
		return err
	}
	if !detached {
		return &ServiceError{
			Code:    constants.ErrCodeMarkerNotInTour,
			Message: constants.GetErrorMessage(constants.ErrCodeMarkerNotInTour),
		}
	}
	return nil
}

// ReorderMarkers rewrites the tour's marker order from a caller-supplied
// full list. The list may repeat markers and may include same-trip
// markers not yet attached; those become attached by the rewrite.
func (s *TourService) ReorderMarkers(ctx context.Context, ownerID, tourID string, markerIDs []string) ([]dtos.TourMarkerOccurrence, error) {
	tour, err := s.loadOwnedTour(ctx, ownerID, tourID)
	if err != nil {
		return nil, err
	}

	unique := make([]string, 0, len(markerIDs))
	seen := make(map[string]bool, len(markerIDs))
	for _, id := range markerIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	byID, err := s.markers.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, id := range unique {
		marker, ok := byID[id]
		if !ok {
			return nil, &ServiceError{Code: constants.ErrCodeNotFound, Message: fmt.Sprintf("Marker %s not found", id)}
		}
		if marker.TripID != tour.TripID {
			return nil, &ServiceError{
				Code:    constants.ErrCodeCrossTripReference,
				Message: constants.GetErrorMessage(constants.ErrCodeCrossTripReference),
			}
		}
	}

	rows, err := s.tourMarkers.Reorder(ctx, tourID, markerIDs)
	if err != nil {
		return nil, err
	}
	return s.occurrences(rows, byID), nil
}

// ReorderItems applies a combined ordering over a tour's directly
// visible children: markers and sub-tours interleaved. The combined list
// index becomes each item's position, marker positions in the
// association table and sub-tour positions in the tours table, so a
// merge by position across both reconstructs the caller's list.
func (s *TourService) ReorderItems(ctx context.Context, ownerID, tourID string, items []dtos.OrderedItem) error {
	if _, err := s.loadOwnedTour(ctx, ownerID, tourID); err != nil {
		return err
	}

	// Occurrence rows are consumed in position order so duplicate
	// markers in the list map to distinct rows deterministically.
	rows, err := s.tourMarkers.ListByTour(ctx, tourID)
	if err != nil {
		return err
	}
	rowQueues := make(map[string][]string, len(rows))
	for _, row := range rows {
		rowQueues[row.MarkerID] = append(rowQueues[row.MarkerID], row.ID)
	}

	children, err := s.tours.ListChildren(ctx, tourID)
	if err != nil {
		return err
	}
	childSet := make(map[string]bool, len(children))
	for _, child := range children {
		childSet[child.ID] = true
	}

	rowPositions := make(map[string]int)
	tourPositions := make(map[string]int)

	for i, item := range items {
		switch constants.ItemType(item.Type) {
		case constants.ItemTypeMarker:
			queue := rowQueues[item.ID]
			if len(queue) == 0 {
				return &ServiceError{
					Code:    constants.ErrCodeMarkerNotInTour,
					Message: constants.GetErrorMessage(constants.ErrCodeMarkerNotInTour),
				}
			}
			rowPositions[queue[0]] = i
			rowQueues[item.ID] = queue[1:]

		case constants.ItemTypeSubtour:
			if !childSet[item.ID] {
				return &ServiceError{
					Code:    constants.ErrCodeSubtourNotInTour,
					Message: constants.GetErrorMessage(constants.ErrCodeSubtourNotInTour),
				}
			}
			tourPositions[item.ID] = i

		default:
			return &ServiceError{
				Code:    constants.ErrCodeUnknownItemType,
				Message: constants.GetErrorMessage(constants.ErrCodeUnknownItemType),
			}
		}
	}

	return s.tourMarkers.ApplyMixedOrder(ctx, rowPositions, tourPositions)
}

// SortTour computes a proximity order for the tour's markers and
// persists it: quota check, provider matrix, nearest-neighbor pass, then
// a transactional reorder.
func (s *TourService) SortTour(ctx context.Context, ownerID, tourID string) (*dtos.SortResult, error) {
	tour, err := s.loadOwnedTour(ctx, ownerID, tourID)
	if err != nil {
		return nil, err
	}

	// The occurrence list is loaded in insertion order, which is what
	// the engine starts from. This is not necessarily position order.
	rows, err := s.tourMarkers.ListInLoadOrder(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if len(rows) < constants.MinMatrixMarkers {
		return nil, &ServiceError{Code: constants.ErrCodeInvalidArgument, Message: constants.MsgTourTooFewMarkers}
	}
	if len(rows) > constants.MaxMatrixMarkers {
		return nil, &ServiceError{Code: constants.ErrCodeInvalidArgument, Message: constants.MsgTourTooManyMarkers}
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.MarkerID
	}
	byID, err := s.markers.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	markers := make([]entities.Marker, len(rows))
	for i, row := range rows {
		marker, ok := byID[row.MarkerID]
		if !ok {
			return nil, fmt.Errorf("tour %s references missing marker %s", tourID, row.MarkerID)
		}
		markers[i] = marker
	}

	matrix, err := s.calculateMatrix(ctx, markers)
	if err != nil {
		return nil, err
	}

	order := SortMarkersByProximity(markers, matrix)
	indices := visitationIndices(markers, order)
	total := CalculateTotalDistance(indices, matrix.Distances)

	newRows, err := s.tourMarkers.Reorder(ctx, tourID, order)
	if err != nil {
		return nil, err
	}

	s.persistLegRoutes(ctx, tourID, markers, indices, matrix)

	logging.Info("Tour sorted by proximity",
		"tour_id", tourID,
		"markers", len(order),
		"total_distance_m", total,
	)

	return &dtos.SortResult{
		Tour:          *tour,
		Markers:       s.occurrences(newRows, byID),
		TotalDistance: total,
	}, nil
}

// persistLegRoutes stores walking legs for the freshly sorted
// consecutive pairs. Failures are logged and not fatal: legs are
// derivable again from the next matrix request.
func (s *TourService) persistLegRoutes(ctx context.Context, tourID string, markers []entities.Marker, indices []int, matrix *providers.DistanceMatrix) {
	for i := 0; i+1 < len(indices); i++ {
		from, to := indices[i], indices[i+1]
		dist := matrix.Distances[from][to]
		dur := matrix.Durations[from][to]
		if dist == nil || dur == nil {
			continue
		}

		route := &entities.Route{
			TourID:         tourID,
			FromMarkerID:   markers[from].ID,
			ToMarkerID:     markers[to].ID,
			Mode:           "walking",
			DistanceMeters: *dist,
			DurationSecs:   *dur,
		}
		if err := s.routes.Upsert(ctx, route); err != nil {
			logging.Warn("Failed to persist sorted leg route",
				"tour_id", tourID,
				"error", err,
			)
			return
		}
	}
}

// visitationIndices maps the sorted ID order back onto input indices,
// consuming duplicates left to right.
func visitationIndices(markers []entities.Marker, order []string) []int {
	used := make([]bool, len(markers))
	indices := make([]int, 0, len(order))
	for _, id := range order {
		for i, m := range markers {
			if !used[i] && m.ID == id {
				used[i] = true
				indices = append(indices, i)
				break
			}
		}
	}
	return indices
}

// calculateMatrix consults the cache first; a hit avoids both the
// provider call and the quota increment. On a miss the quota gate runs
// before the external call.
func (s *TourService) calculateMatrix(ctx context.Context, markers []entities.Marker) (*providers.DistanceMatrix, error) {
	key := matrixCacheKey(markers)

	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			if matrix, ok := cached.(*providers.DistanceMatrix); ok {
				logging.Debug("Distance matrix cache hit", "key", key)
				if s.Metrics != nil {
					s.Metrics.CacheHitsTotal.WithLabelValues(string(constants.CachePrefixMatrix)).Inc()
				}
				return matrix, nil
			}
		}
		if s.Metrics != nil {
			s.Metrics.CacheMissesTotal.WithLabelValues(string(constants.CachePrefixMatrix)).Inc()
		}
	}

	if err := s.quota.CheckQuota(ctx); err != nil {
		return nil, err
	}

	matrix, err := s.routing.CalculateMatrix(ctx, markers)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, matrix, matrixCacheTTL)
	}
	return matrix, nil
}

func matrixCacheKey(markers []entities.Marker) string {
	var b strings.Builder
	b.WriteString(string(constants.CachePrefixMatrix))
	for _, m := range markers {
		fmt.Fprintf(&b, "%f,%f;", m.Longitude, m.Latitude)
	}
	return b.String()
}

// GetTourDetail returns the tour with its ordered markers, sub-tours and
// estimated duration: marker hours plus route durations for currently
// consecutive pairs.
func (s *TourService) GetTourDetail(ctx context.Context, ownerID, tourID string) (*dtos.TourDetail, error) {
	tour, err := s.loadOwnedTour(ctx, ownerID, tourID)
	if err != nil {
		return nil, err
	}

	var (
		rows     []entities.TourMarker
		subTours []entities.Tour
		routes   []entities.Route
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.tourMarkers.ListByTour(gctx, tourID)
		return err
	})
	g.Go(func() error {
		var err error
		subTours, err = s.tours.ListChildren(gctx, tourID)
		return err
	})
	g.Go(func() error {
		var err error
		routes, err = s.routes.ListByTour(gctx, tourID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.MarkerID
	}
	byID, err := s.markers.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	occurrences := s.occurrences(rows, byID)

	var hours float64
	for _, occ := range occurrences {
		if occ.Marker.EstimatedHours != nil {
			hours += *occ.Marker.EstimatedHours
		}
	}
	for _, route := range filterConsecutiveRoutes(routes, rows) {
		hours += route.DurationSecs / 3600
	}

	return &dtos.TourDetail{
		Tour:           *tour,
		Markers:        occurrences,
		SubTours:       subTours,
		EstimatedHours: hours,
	}, nil
}

// ListConsecutiveRoutes returns only routes whose two markers are
// currently consecutive in the tour's order. Stale rows stay in storage
// after a reorder and are filtered here, never deleted.
func (s *TourService) ListConsecutiveRoutes(ctx context.Context, ownerID, tourID string) ([]entities.Route, error) {
	if _, err := s.loadOwnedTour(ctx, ownerID, tourID); err != nil {
		return nil, err
	}

	rows, err := s.tourMarkers.ListByTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	routes, err := s.routes.ListByTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	return filterConsecutiveRoutes(routes, rows), nil
}

// filterConsecutiveRoutes keeps routes whose marker pair appears as
// adjacent occurrences, in either direction.
func filterConsecutiveRoutes(routes []entities.Route, rows []entities.TourMarker) []entities.Route {
	adjacent := make(map[string]bool, len(rows))
	for i := 0; i+1 < len(rows); i++ {
		adjacent[rows[i].MarkerID+"|"+rows[i+1].MarkerID] = true
		adjacent[rows[i+1].MarkerID+"|"+rows[i].MarkerID] = true
	}

	kept := make([]entities.Route, 0, len(routes))
	for _, route := range routes {
		if adjacent[route.FromMarkerID+"|"+route.ToMarkerID] {
			kept = append(kept, route)
		}
	}
	return kept
}

// ListTourMarkers returns the tour's marker occurrences in position order
func (s *TourService) ListTourMarkers(ctx context.Context, ownerID, tourID string) ([]dtos.TourMarkerOccurrence, error) {
	if _, err := s.loadOwnedTour(ctx, ownerID, tourID); err != nil {
		return nil, err
	}

	rows, err := s.tourMarkers.ListByTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.MarkerID
	}
	byID, err := s.markers.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.occurrences(rows, byID), nil
}

func (s *TourService) occurrences(rows []entities.TourMarker, byID map[string]entities.Marker) []dtos.TourMarkerOccurrence {
	occurrences := make([]dtos.TourMarkerOccurrence, len(rows))
	for i, row := range rows {
		occurrences[i] = dtos.TourMarkerOccurrence{
			AssociationID: row.ID,
			Position:      row.Position,
			Marker:        byID[row.MarkerID],
		}
	}
	return occurrences
}

// DeleteTour removes the tour and its sub-tree
func (s *TourService) DeleteTour(ctx context.Context, ownerID, tourID string) error {
	if _, err := s.loadOwnedTour(ctx, ownerID, tourID); err != nil {
		return err
	}
	return s.tours.Delete(ctx, tourID)
}
