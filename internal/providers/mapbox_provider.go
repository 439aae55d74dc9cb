package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/metrics"
	"roamio/cartographer/internal/models/entities"
)

// MapboxProvider implements RoutingProvider against the Mapbox
// Directions-Matrix API. Tour ordering is pedestrian-centric, so every
// request uses the walking profile.
type MapboxProvider struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
	Quota       QuotaRecorder
	// Metrics is optional; when set, external calls are counted by outcome
	Metrics *metrics.MetricsRegistry
}

// NewMapboxProvider creates a provider configured from the environment
func NewMapboxProvider(quota QuotaRecorder) *MapboxProvider {
	baseURL := os.Getenv("MAPBOX_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.mapbox.com"
	}

	return &MapboxProvider{
		BaseURL:     baseURL,
		AccessToken: os.Getenv("MAPBOX_ACCESS_TOKEN"),
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
		Quota: quota,
	}
}

func (p *MapboxProvider) countOutcome(outcome string) {
	if p.Metrics != nil {
		p.Metrics.RoutingRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

type matrixResponse struct {
	Code      string       `json:"code"`
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// CalculateMatrix requests an N×N walking matrix for the markers, in
// input order. One logical provider call regardless of N; the quota
// recorder is notified exactly once, on success.
func (p *MapboxProvider) CalculateMatrix(ctx context.Context, markers []entities.Marker) (*DistanceMatrix, error) {
	if len(markers) < constants.MinMatrixMarkers {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidArgument,
			Message: constants.MsgAtLeastTwoMarkers,
		}
	}
	if len(markers) > constants.MaxMatrixMarkers {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidArgument,
			Message: constants.MsgTooManyMarkers,
		}
	}
	if p.AccessToken == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderUnavailable,
			Message: constants.MsgTokenNotConfigured,
		}
	}

	// Mapbox wants longitude,latitude pairs joined with ";".
	coords := make([]string, len(markers))
	for i, m := range markers {
		coords[i] = fmt.Sprintf("%f,%f", m.Longitude, m.Latitude)
	}

	endpoint := fmt.Sprintf("%s/directions-matrix/v1/mapbox/walking/%s?annotations=distance,duration&access_token=%s",
		p.BaseURL, strings.Join(coords, ";"), url.QueryEscape(p.AccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderError,
			Message: "failed to create matrix request",
			Err:     err,
		}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		p.countOutcome("error")
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderError,
			Message: "matrix request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.countOutcome("error")
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderError,
			Message: "failed to read matrix response",
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.countOutcome("error")
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderError,
			Message: fmt.Sprintf("matrix request returned status %d", resp.StatusCode),
			Details: string(body),
		}
	}

	var parsed matrixResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		p.countOutcome("error")
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderError,
			Message: "failed to decode matrix response",
			Details: string(body),
			Err:     err,
		}
	}

	if parsed.Durations == nil || parsed.Distances == nil {
		p.countOutcome("error")
		return nil, &ProviderError{
			Code:    constants.ErrCodeProviderError,
			Message: "matrix response missing durations or distances",
			Details: string(body),
		}
	}

	p.countOutcome("success")

	if p.Quota != nil {
		if err := p.Quota.RecordRequest(ctx); err != nil {
			return nil, fmt.Errorf("failed to record provider request: %w", err)
		}
	}

	return &DistanceMatrix{
		Durations: parsed.Durations,
		Distances: parsed.Distances,
	}, nil
}
