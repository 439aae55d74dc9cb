package dtos

import (
	"time"

	"roamio/cartographer/internal/models/entities"
)

type APIResponse[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
	Data      *T        `json:"data,omitempty"`
}

// TourMarkerOccurrence is one association row joined with its marker,
// as returned by the ordered-tour endpoints.
type TourMarkerOccurrence struct {
	AssociationID string          `json:"association_id"`
	Position      int             `json:"position"`
	Marker        entities.Marker `json:"marker"`
}

type TourDetail struct {
	Tour           entities.Tour          `json:"tour"`
	Markers        []TourMarkerOccurrence `json:"markers"`
	SubTours       []entities.Tour        `json:"sub_tours"`
	EstimatedHours float64                `json:"estimated_hours"`
}

type UsageStats struct {
	Period    string `json:"period"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

type SortResult struct {
	Tour          entities.Tour          `json:"tour"`
	Markers       []TourMarkerOccurrence `json:"markers"`
	TotalDistance float64                `json:"total_distance_meters"`
}
