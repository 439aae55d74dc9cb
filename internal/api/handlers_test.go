package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roamio/cartographer/internal/auth"
	"roamio/cartographer/internal/common"
	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/db"
	"roamio/cartographer/internal/db/repositories"
	"roamio/cartographer/internal/metrics"
	"roamio/cartographer/internal/models/dtos"
	"roamio/cartographer/internal/models/entities"
	"roamio/cartographer/internal/providers"
	"roamio/cartographer/internal/services"
)

// A single registry for the whole test binary; Prometheus rejects
// duplicate metric registration.
var testMetrics = metrics.NewMetricsRegistry()

type testClaims struct {
	id string
}

func (c *testClaims) UserID() string { return c.id }
func (c *testClaims) Source() string { return "test" }

// stubRouting lets each test choose the matrix or failure the provider
// returns
type stubRouting struct {
	matrix *providers.DistanceMatrix
	err    error
	calls  int
}

func (s *stubRouting) CalculateMatrix(ctx context.Context, markers []entities.Marker) (*providers.DistanceMatrix, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.matrix, nil
}

// fakeQuotaStore mirrors the repository's create-or-increment contract
type fakeQuotaStore struct {
	counters map[string]*entities.QuotaCounter
}

func (s *fakeQuotaStore) IncrementAndGet(ctx context.Context, period string) (*entities.QuotaCounter, error) {
	counter, ok := s.counters[period]
	if !ok {
		counter = &entities.QuotaCounter{Period: period}
		s.counters[period] = counter
	}
	counter.RequestCount++
	counter.LastRequestAt = time.Now()
	return counter, nil
}

func (s *fakeQuotaStore) GetByPeriod(ctx context.Context, period string) (*entities.QuotaCounter, error) {
	return s.counters[period], nil
}

type handlerFixture struct {
	handlers *Handlers
	gdb      *gorm.DB
	routing  *stubRouting
	quota    *services.QuotaService
	trip     *entities.Trip
	tour     *entities.Tour
}

func newHandlerFixture(t *testing.T, quotaLimit int) *handlerFixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repos := &Repositories{
		Trips:       repositories.NewTripRepository(gdb),
		Markers:     repositories.NewMarkerRepository(gdb),
		Tours:       repositories.NewTourRepository(gdb),
		TourMarkers: repositories.NewTourMarkerRepository(gdb),
		Routes:      repositories.NewRouteRepository(gdb),
	}

	quota := services.NewQuotaService(&fakeQuotaStore{counters: map[string]*entities.QuotaCounter{}}, quotaLimit)
	routing := &stubRouting{}
	cache := common.NewCacheService(600, 1200)

	deps := &Dependencies{
		Repo: repos,
		Services: &Services{
			Cache:   cache,
			Quota:   quota,
			Trips:   services.NewTripService(repos.Trips),
			Markers: services.NewMarkerService(repos.Trips, repos.Markers),
			Tours: services.NewTourService(
				repos.Trips, repos.Tours, repos.Markers, repos.TourMarkers, repos.Routes,
				quota, routing, cache,
			),
		},
		Routing: routing,
		Metrics: testMetrics,
	}

	fx := &handlerFixture{
		handlers: NewHandlers(deps),
		gdb:      gdb,
		routing:  routing,
		quota:    quota,
	}

	fx.trip = &entities.Trip{OwnerID: "planner-1", Name: "Kyoto"}
	if err := gdb.Create(fx.trip).Error; err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	fx.tour = &entities.Tour{TripID: fx.trip.ID, Name: "Old town"}
	if err := gdb.Create(fx.tour).Error; err != nil {
		t.Fatalf("failed to create tour: %v", err)
	}

	return fx
}

func (fx *handlerFixture) addAttachedMarker(t *testing.T, name string, lat, lon float64, position int) *entities.Marker {
	t.Helper()
	marker := &entities.Marker{TripID: fx.trip.ID, Name: name, Latitude: lat, Longitude: lon}
	if err := fx.gdb.Create(marker).Error; err != nil {
		t.Fatalf("failed to create marker: %v", err)
	}
	row := &entities.TourMarker{TourID: fx.tour.ID, MarkerID: marker.ID, Position: position}
	if err := fx.gdb.Create(row).Error; err != nil {
		t.Fatalf("failed to attach marker: %v", err)
	}
	// keep insertion order distinguishable for the sorter's load order
	time.Sleep(time.Millisecond)
	return marker
}

// newRequest builds an authenticated request with chi URL params wired in
func newRequest(t *testing.T, method, target string, body any, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)

	rctx := chi.NewRouteContext()
	for key, val := range params {
		rctx.URLParams.Add(key, val)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = auth.SetUserClaims(ctx, &testClaims{id: "planner-1"})

	return req.WithContext(ctx)
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) dtos.APIResponse[T] {
	t.Helper()
	var resp dtos.APIResponse[T]
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestSortTourHandler_Success(t *testing.T) {
	fx := newHandlerFixture(t, 100)
	m1 := fx.addAttachedMarker(t, "Station", 35.0, 135.70, 0)
	m2 := fx.addAttachedMarker(t, "Garden", 35.0, 135.72, 1)
	m3 := fx.addAttachedMarker(t, "Temple", 35.0, 135.71, 2)

	// load order m1, m2, m3: m1-m2=120, m1-m3=100, m2-m3=50
	fx.routing.matrix = &providers.DistanceMatrix{
		Distances: [][]*float64{
			{ptr(0), ptr(120), ptr(100)},
			{ptr(120), ptr(0), ptr(50)},
			{ptr(100), ptr(50), ptr(0)},
		},
		Durations: [][]*float64{
			{ptr(0), ptr(90), ptr(75)},
			{ptr(90), ptr(0), ptr(40)},
			{ptr(75), ptr(40), ptr(0)},
		},
	}

	req := newRequest(t, http.MethodPost, "/api/v1/tours/"+fx.tour.ID+"/sort", nil,
		map[string]string{"tourID": fx.tour.ID})
	rec := httptest.NewRecorder()
	fx.handlers.SortTour().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope[dtos.SortResult](t, rec)
	if resp.Status != "success" || resp.Data == nil {
		t.Fatalf("Expected success envelope, got %+v", resp)
	}
	if resp.Data.TotalDistance != 150 {
		t.Errorf("Expected total distance 150, got %v", resp.Data.TotalDistance)
	}

	want := []string{m1.ID, m3.ID, m2.ID}
	for i, occ := range resp.Data.Markers {
		if occ.Marker.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], occ.Marker.ID)
		}
	}
}

func TestSortTourHandler_TooFewMarkers(t *testing.T) {
	fx := newHandlerFixture(t, 100)
	fx.addAttachedMarker(t, "Temple", 35.0, 135.7, 0)

	req := newRequest(t, http.MethodPost, "/api/v1/tours/"+fx.tour.ID+"/sort", nil,
		map[string]string{"tourID": fx.tour.ID})
	rec := httptest.NewRecorder()
	fx.handlers.SortTour().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}
	resp := decodeEnvelope[any](t, rec)
	if resp.Error != constants.MsgTourTooFewMarkers {
		t.Errorf("Expected %q, got %q", constants.MsgTourTooFewMarkers, resp.Error)
	}
}

func TestSortTourHandler_QuotaExceeded(t *testing.T) {
	fx := newHandlerFixture(t, 1)
	fx.addAttachedMarker(t, "Station", 35.0, 135.70, 0)
	fx.addAttachedMarker(t, "Temple", 35.0, 135.71, 1)

	if err := fx.quota.RecordRequest(context.Background()); err != nil {
		t.Fatalf("RecordRequest failed: %v", err)
	}

	req := newRequest(t, http.MethodPost, "/api/v1/tours/"+fx.tour.ID+"/sort", nil,
		map[string]string{"tourID": fx.tour.ID})
	rec := httptest.NewRecorder()
	fx.handlers.SortTour().ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}

	resp := decodeEnvelope[dtos.UsageStats](t, rec)
	if resp.Status != "error" || resp.Data == nil {
		t.Fatalf("Expected error envelope with usage attached, got %+v", resp)
	}
	if resp.Data.Remaining != 0 || resp.Data.Limit != 1 {
		t.Errorf("Expected exhausted usage snapshot, got %+v", resp.Data)
	}
	if fx.routing.calls != 0 {
		t.Errorf("Expected no provider call, got %d", fx.routing.calls)
	}
}

func TestSortTourHandler_ProviderFailure(t *testing.T) {
	fx := newHandlerFixture(t, 100)
	fx.addAttachedMarker(t, "Station", 35.0, 135.70, 0)
	fx.addAttachedMarker(t, "Temple", 35.0, 135.71, 1)

	fx.routing.err = &providers.ProviderError{
		Code:    constants.ErrCodeProviderError,
		Message: constants.GetErrorMessage(constants.ErrCodeProviderError),
	}

	req := newRequest(t, http.MethodPost, "/api/v1/tours/"+fx.tour.ID+"/sort", nil,
		map[string]string{"tourID": fx.tour.ID})
	rec := httptest.NewRecorder()
	fx.handlers.SortTour().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rec.Code)
	}
}

func TestSortTourHandler_Unauthenticated(t *testing.T) {
	fx := newHandlerFixture(t, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tours/"+fx.tour.ID+"/sort", nil)
	rec := httptest.NewRecorder()
	fx.handlers.SortTour().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestAttachMarkerHandler(t *testing.T) {
	fx := newHandlerFixture(t, 100)
	marker := &entities.Marker{TripID: fx.trip.ID, Name: "Temple", Latitude: 35.0, Longitude: 135.7}
	if err := fx.gdb.Create(marker).Error; err != nil {
		t.Fatalf("failed to create marker: %v", err)
	}

	req := newRequest(t, http.MethodPost, "/api/v1/tours/"+fx.tour.ID+"/markers",
		dtos.AttachMarkerReq{MarkerID: marker.ID},
		map[string]string{"tourID": fx.tour.ID})
	rec := httptest.NewRecorder()
	fx.handlers.AttachMarker().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope[entities.TourMarker](t, rec)
	if resp.Data == nil || resp.Data.Position != 0 {
		t.Errorf("Expected first occurrence at position 0, got %+v", resp.Data)
	}
}

func TestAttachMarkerHandler_CrossTrip(t *testing.T) {
	fx := newHandlerFixture(t, 100)

	otherTrip := &entities.Trip{OwnerID: "planner-1", Name: "Osaka"}
	if err := fx.gdb.Create(otherTrip).Error; err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	foreign := &entities.Marker{TripID: otherTrip.ID, Name: "Castle", Latitude: 34.7, Longitude: 135.5}
	if err := fx.gdb.Create(foreign).Error; err != nil {
		t.Fatalf("failed to create marker: %v", err)
	}

	req := newRequest(t, http.MethodPost, "/api/v1/tours/"+fx.tour.ID+"/markers",
		dtos.AttachMarkerReq{MarkerID: foreign.ID},
		map[string]string{"tourID": fx.tour.ID})
	rec := httptest.NewRecorder()
	fx.handlers.AttachMarker().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}
}

func TestDetachMarkerHandler(t *testing.T) {
	fx := newHandlerFixture(t, 100)
	marker := fx.addAttachedMarker(t, "Temple", 35.0, 135.7, 0)

	req := newRequest(t, http.MethodDelete,
		"/api/v1/tours/"+fx.tour.ID+"/markers/"+marker.ID, nil,
		map[string]string{"tourID": fx.tour.ID, "markerID": marker.ID})
	rec := httptest.NewRecorder()
	fx.handlers.DetachMarker().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// second detach has nothing left to remove
	req = newRequest(t, http.MethodDelete,
		"/api/v1/tours/"+fx.tour.ID+"/markers/"+marker.ID, nil,
		map[string]string{"tourID": fx.tour.ID, "markerID": marker.ID})
	rec = httptest.NewRecorder()
	fx.handlers.DetachMarker().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422 for missing occurrence, got %d", rec.Code)
	}
}

func TestReorderMarkersHandler(t *testing.T) {
	fx := newHandlerFixture(t, 100)
	a := fx.addAttachedMarker(t, "Temple", 35.0, 135.7, 0)
	b := fx.addAttachedMarker(t, "Market", 35.1, 135.8, 1)

	req := newRequest(t, http.MethodPut, "/api/v1/tours/"+fx.tour.ID+"/order",
		dtos.ReorderMarkersReq{MarkerIDs: []string{b.ID, a.ID}},
		map[string]string{"tourID": fx.tour.ID})
	rec := httptest.NewRecorder()
	fx.handlers.ReorderMarkers().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope[[]dtos.TourMarkerOccurrence](t, rec)
	if resp.Data == nil || len(*resp.Data) != 2 {
		t.Fatalf("Expected 2 occurrences, got %+v", resp.Data)
	}
	if (*resp.Data)[0].Marker.ID != b.ID || (*resp.Data)[1].Marker.ID != a.ID {
		t.Errorf("Expected order [%s %s], got %+v", b.ID, a.ID, resp.Data)
	}
}

func TestGetUsageHandler(t *testing.T) {
	fx := newHandlerFixture(t, 10)
	for i := 0; i < 3; i++ {
		if err := fx.quota.RecordRequest(context.Background()); err != nil {
			t.Fatalf("RecordRequest failed: %v", err)
		}
	}

	req := newRequest(t, http.MethodGet, "/api/v1/usage", nil, nil)
	rec := httptest.NewRecorder()
	fx.handlers.GetUsage().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope[dtos.UsageStats](t, rec)
	if resp.Data == nil || resp.Data.Count != 3 || resp.Data.Remaining != 7 {
		t.Errorf("Expected 3 used of 10, got %+v", resp.Data)
	}
}

func ptr(v float64) *float64 {
	return &v
}
