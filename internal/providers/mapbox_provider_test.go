package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/models/entities"
)

type recorderStub struct {
	calls int
}

func (r *recorderStub) RecordRequest(ctx context.Context) error {
	r.calls++
	return nil
}

func testMarkers(n int) []entities.Marker {
	markers := make([]entities.Marker, n)
	for i := range markers {
		markers[i] = entities.Marker{
			ID:        "m" + string(rune('0'+i)),
			Latitude:  48.8 + float64(i)*0.01,
			Longitude: 2.3 + float64(i)*0.01,
		}
	}
	return markers
}

func TestMapboxProvider_CalculateMatrix_Success(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		if r.URL.Query().Get("access_token") != "test-token" {
			t.Errorf("Expected access_token query param, got %q", r.URL.RawQuery)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"code": "Ok",
			"durations": [[0, 120], [115, 0]],
			"distances": [[0, 150.5], [148.2, 0]]
		}`))
	}))
	defer server.Close()

	recorder := &recorderStub{}
	provider := &MapboxProvider{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Client:      &http.Client{},
		Quota:       recorder,
	}

	matrix, err := provider.CalculateMatrix(context.Background(), testMarkers(2))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(gotPath, "/directions-matrix/v1/mapbox/walking/") {
		t.Errorf("Expected walking matrix path, got %s", gotPath)
	}

	// Coordinates are serialized longitude first
	if !strings.HasPrefix(gotPath[strings.LastIndex(gotPath, "/")+1:], "2.3") {
		t.Errorf("Expected lon,lat coordinate order in path, got %s", gotPath)
	}

	if len(matrix.Distances) != 2 || len(matrix.Durations) != 2 {
		t.Fatalf("Expected 2x2 matrices, got %dx%d", len(matrix.Distances), len(matrix.Durations))
	}

	if *matrix.Distances[0][1] != 150.5 {
		t.Errorf("Expected distance 150.5, got %f", *matrix.Distances[0][1])
	}

	if recorder.calls != 1 {
		t.Errorf("Expected exactly 1 quota increment, got %d", recorder.calls)
	}
}

func TestMapboxProvider_CalculateMatrix_NullCells(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"code": "Ok",
			"durations": [[0, null], [null, 0]],
			"distances": [[0, null], [null, 0]]
		}`))
	}))
	defer server.Close()

	provider := &MapboxProvider{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Client:      &http.Client{},
	}

	matrix, err := provider.CalculateMatrix(context.Background(), testMarkers(2))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if matrix.Distances[0][1] != nil {
		t.Errorf("Expected nil cell for unreachable pair, got %v", *matrix.Distances[0][1])
	}
	if *matrix.Distances[0][0] != 0 {
		t.Errorf("Expected 0 diagonal, got %v", *matrix.Distances[0][0])
	}
}

func TestMapboxProvider_CalculateMatrix_TooFewMarkers(t *testing.T) {
	provider := &MapboxProvider{AccessToken: "test-token", Client: &http.Client{}}

	_, err := provider.CalculateMatrix(context.Background(), testMarkers(1))
	if err == nil {
		t.Fatal("Expected error for 1 marker")
	}

	provErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("Expected ProviderError, got %T", err)
	}
	if provErr.Code != constants.ErrCodeInvalidArgument {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeInvalidArgument, provErr.Code)
	}
	if !strings.Contains(provErr.Message, "At least 2 markers") {
		t.Errorf("Expected message about minimum markers, got %q", provErr.Message)
	}
}

func TestMapboxProvider_CalculateMatrix_TooManyMarkers(t *testing.T) {
	provider := &MapboxProvider{AccessToken: "test-token", Client: &http.Client{}}

	_, err := provider.CalculateMatrix(context.Background(), testMarkers(26))
	if err == nil {
		t.Fatal("Expected error for 26 markers")
	}

	provErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("Expected ProviderError, got %T", err)
	}
	if !strings.Contains(provErr.Message, "Too many markers") {
		t.Errorf("Expected message about too many markers, got %q", provErr.Message)
	}
}

func TestMapboxProvider_CalculateMatrix_MissingToken(t *testing.T) {
	provider := &MapboxProvider{Client: &http.Client{}}

	_, err := provider.CalculateMatrix(context.Background(), testMarkers(2))
	if err == nil {
		t.Fatal("Expected error when token is not configured")
	}

	provErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("Expected ProviderError, got %T", err)
	}
	if provErr.Code != constants.ErrCodeProviderUnavailable {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeProviderUnavailable, provErr.Code)
	}
}

func TestMapboxProvider_CalculateMatrix_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message": "upstream down"}`))
	}))
	defer server.Close()

	recorder := &recorderStub{}
	provider := &MapboxProvider{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Client:      &http.Client{},
		Quota:       recorder,
	}

	_, err := provider.CalculateMatrix(context.Background(), testMarkers(2))
	if err == nil {
		t.Fatal("Expected error for 502 response")
	}

	provErr, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("Expected ProviderError, got %T", err)
	}
	if provErr.Code != constants.ErrCodeProviderError {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeProviderError, provErr.Code)
	}
	if !strings.Contains(provErr.Details, "upstream down") {
		t.Errorf("Expected raw payload in details, got %q", provErr.Details)
	}

	if recorder.calls != 0 {
		t.Errorf("Expected no quota increment on failure, got %d", recorder.calls)
	}
}

func TestMapboxProvider_CalculateMatrix_MissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"code": "Ok", "durations": [[0, 1], [1, 0]]}`))
	}))
	defer server.Close()

	provider := &MapboxProvider{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Client:      &http.Client{},
	}

	_, err := provider.CalculateMatrix(context.Background(), testMarkers(2))
	if err == nil {
		t.Fatal("Expected error for response missing distances")
	}
}
