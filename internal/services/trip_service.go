package services

import (
	"context"
	"strings"

	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/db/repositories"
	"roamio/cartographer/internal/models/entities"
)

// TripService handles trip CRUD and the explicit delete cascade
type TripService struct {
	trips *repositories.TripRepository
}

func NewTripService(trips *repositories.TripRepository) *TripService {
	return &TripService{trips: trips}
}

func (s *TripService) CreateTrip(ctx context.Context, ownerID, name string) (*entities.Trip, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ServiceError{Code: constants.ErrCodeInvalidInput, Message: "Trip name is required"}
	}

	trip := &entities.Trip{OwnerID: ownerID, Name: name}
	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *TripService) ListTrips(ctx context.Context, ownerID string) ([]entities.Trip, error) {
	return s.trips.ListByOwner(ctx, ownerID)
}

func (s *TripService) GetTrip(ctx context.Context, ownerID, tripID string) (*entities.Trip, error) {
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

// DeleteTrip removes the trip and everything under it in one transaction
func (s *TripService) DeleteTrip(ctx context.Context, ownerID, tripID string) error {
	if _, err := s.GetTrip(ctx, ownerID, tripID); err != nil {
		return err
	}
	return s.trips.Delete(ctx, tripID)
}
