package providers

import (
	"context"
	"errors"
	"fmt"

	"roamio/cartographer/internal/models/entities"
)

// DistanceMatrix holds the pairwise results for a matrix request. Both
// matrices are indexed by the input marker order; a nil cell means the
// provider could not compute that pair. The diagonal is always 0.
type DistanceMatrix struct {
	// Durations in seconds
	Durations [][]*float64
	// Distances in meters
	Distances [][]*float64
}

// RoutingProvider computes pairwise pedestrian travel distances and
// durations between a set of markers, in marker order.
type RoutingProvider interface {
	CalculateMatrix(ctx context.Context, markers []entities.Marker) (*DistanceMatrix, error)
}

// QuotaRecorder is notified once per successful external call, so the
// monthly ceiling counts provider requests rather than user actions.
type QuotaRecorder interface {
	RecordRequest(ctx context.Context) error
}

// ProviderError describes a failed interaction with the routing provider
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AsProviderError unwraps err into a *ProviderError if it is one
func AsProviderError(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr, true
	}
	return nil, false
}
