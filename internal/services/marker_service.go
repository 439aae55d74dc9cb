package services

import (
	"context"
	"strings"

	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/db/repositories"
	"roamio/cartographer/internal/models/dtos"
	"roamio/cartographer/internal/models/entities"
)

// MarkerService handles marker CRUD within a trip
type MarkerService struct {
	trips   *repositories.TripRepository
	markers *repositories.MarkerRepository
}

func NewMarkerService(trips *repositories.TripRepository, markers *repositories.MarkerRepository) *MarkerService {
	return &MarkerService{trips: trips, markers: markers}
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return &ServiceError{Code: constants.ErrCodeInvalidInput, Message: "Latitude must be between -90 and 90"}
	}
	if lon < -180 || lon > 180 {
		return &ServiceError{Code: constants.ErrCodeInvalidInput, Message: "Longitude must be between -180 and 180"}
	}
	return nil
}

func (s *MarkerService) loadOwnedTrip(ctx context.Context, ownerID, tripID string) (*entities.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, &ServiceError{Code: constants.ErrCodeNotFound, Message: "Trip not found"}
	}
	if trip.OwnerID != ownerID {
		return nil, &ServiceError{Code: constants.ErrCodeForbidden, Message: constants.GetErrorMessage(constants.ErrCodeForbidden)}
	}
	return trip, nil
}

func (s *MarkerService) CreateMarker(ctx context.Context, ownerID, tripID string, req dtos.CreateMarkerReq) (*entities.Marker, error) {
	if _, err := s.loadOwnedTrip(ctx, ownerID, tripID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, &ServiceError{Code: constants.ErrCodeInvalidInput, Message: "Marker name is required"}
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	marker := &entities.Marker{
		TripID:         tripID,
		Name:           req.Name,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Category:       req.Category,
		EstimatedHours: req.EstimatedHours,
		Notes:          req.Notes,
		URL:            req.URL,
		IsUnesco:       req.IsUnesco,
	}
	if err := s.markers.Create(ctx, marker); err != nil {
		return nil, err
	}
	return marker, nil
}

func (s *MarkerService) ListMarkers(ctx context.Context, ownerID, tripID string) ([]entities.Marker, error) {
	if _, err := s.loadOwnedTrip(ctx, ownerID, tripID); err != nil {
		return nil, err
	}
	return s.markers.ListByTrip(ctx, tripID)
}

func (s *MarkerService) UpdateMarker(ctx context.Context, ownerID, markerID string, req dtos.UpdateMarkerReq) (*entities.Marker, error) {
	marker, err := s.markers.GetByID(ctx, markerID)
	if err != nil {
		return nil, err
	}
	if marker == nil {
		return nil, &ServiceError{Code: constants.ErrCodeNotFound, Message: "Marker not found"}
	}
	if _, err := s.loadOwnedTrip(ctx, ownerID, marker.TripID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		marker.Name = *req.Name
	}
	if req.Latitude != nil {
		marker.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		marker.Longitude = *req.Longitude
	}
	if err := validateCoordinates(marker.Latitude, marker.Longitude); err != nil {
		return nil, err
	}
	if req.Category != nil {
		marker.Category = *req.Category
	}
	if req.EstimatedHours != nil {
		marker.EstimatedHours = req.EstimatedHours
	}
	if req.Notes != nil {
		marker.Notes = req.Notes
	}
	if req.URL != nil {
		marker.URL = req.URL
	}
	if req.IsUnesco != nil {
		marker.IsUnesco = *req.IsUnesco
	}

	if err := s.markers.Update(ctx, marker); err != nil {
		return nil, err
	}
	return marker, nil
}

// DeleteMarker removes the marker, its tour occurrences and routes
func (s *MarkerService) DeleteMarker(ctx context.Context, ownerID, markerID string) error {
	marker, err := s.markers.GetByID(ctx, markerID)
	if err != nil {
		return err
	}
	if marker == nil {
		return &ServiceError{Code: constants.ErrCodeNotFound, Message: "Marker not found"}
	}
	if _, err := s.loadOwnedTrip(ctx, ownerID, marker.TripID); err != nil {
		return err
	}
	return s.markers.Delete(ctx, markerID)
}
