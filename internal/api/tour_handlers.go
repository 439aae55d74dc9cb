package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roamio/cartographer/internal/logging"
	"roamio/cartographer/internal/models/dtos"
)

// CreateTour handles POST /api/v1/trips/{tripID}/tours
func (h *Handlers) CreateTour() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tripID := chi.URLParam(r, "tripID")

		var req dtos.CreateTourReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		tour, err := h.deps.Services.Tours.CreateTour(r.Context(), claims.UserID(), tripID, req)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, tour)
	}
}

// ListTours handles GET /api/v1/trips/{tripID}/tours
func (h *Handlers) ListTours() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tripID := chi.URLParam(r, "tripID")

		tours, err := h.deps.Services.Tours.ListTours(r.Context(), claims.UserID(), tripID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &tours)
	}
}

// GetTourDetail handles GET /api/v1/tours/{tourID}
func (h *Handlers) GetTourDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		detail, err := h.deps.Services.Tours.GetTourDetail(r.Context(), claims.UserID(), tourID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, detail)
	}
}

// RenameTour handles PATCH /api/v1/tours/{tourID}
func (h *Handlers) RenameTour() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		var req dtos.UpdateTourReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		tour, err := h.deps.Services.Tours.RenameTour(r.Context(), claims.UserID(), tourID, req.Name)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, tour)
	}
}

// DeleteTour handles DELETE /api/v1/tours/{tourID}
func (h *Handlers) DeleteTour() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		if err := h.deps.Services.Tours.DeleteTour(r.Context(), claims.UserID(), tourID); err != nil {
			handleServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AttachMarker handles POST /api/v1/tours/{tourID}/markers
func (h *Handlers) AttachMarker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		var req dtos.AttachMarkerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MarkerID == "" {
			respondWithError(w, http.StatusBadRequest, "marker_id is required")
			return
		}

		assoc, err := h.deps.Services.Tours.AttachMarker(r.Context(), claims.UserID(), tourID, req.MarkerID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, assoc)
	}
}

// DetachMarker handles DELETE /api/v1/tours/{tourID}/markers/{markerID}.
// When the marker appears more than once, a single occurrence is removed.
func (h *Handlers) DetachMarker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")
		markerID := chi.URLParam(r, "markerID")

		if err := h.deps.Services.Tours.DetachMarker(r.Context(), claims.UserID(), tourID, markerID); err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess[struct{}](w, http.StatusOK, nil)
	}
}

// ListTourMarkers handles GET /api/v1/tours/{tourID}/markers
func (h *Handlers) ListTourMarkers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		occurrences, err := h.deps.Services.Tours.ListTourMarkers(r.Context(), claims.UserID(), tourID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &occurrences)
	}
}

// ListTourRoutes handles GET /api/v1/tours/{tourID}/routes. Only routes
// between currently consecutive markers are returned; stale rows are
// filtered, not deleted.
func (h *Handlers) ListTourRoutes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		routes, err := h.deps.Services.Tours.ListConsecutiveRoutes(r.Context(), claims.UserID(), tourID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &routes)
	}
}

// ReorderMarkers handles PUT /api/v1/tours/{tourID}/order
func (h *Handlers) ReorderMarkers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		var req dtos.ReorderMarkersReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		occurrences, err := h.deps.Services.Tours.ReorderMarkers(r.Context(), claims.UserID(), tourID, req.MarkerIDs)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &occurrences)
	}
}

// ReorderItems handles PUT /api/v1/tours/{tourID}/items/order, the mixed
// marker and sub-tour ordering.
func (h *Handlers) ReorderItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		var req dtos.ReorderItemsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := h.deps.Services.Tours.ReorderItems(r.Context(), claims.UserID(), tourID, req.Items); err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess[struct{}](w, http.StatusOK, nil)
	}
}

// SortTour handles POST /api/v1/tours/{tourID}/sort. It asks the routing
// provider for a walking distance matrix, orders the markers by nearest
// neighbor and persists the new order.
func (h *Handlers) SortTour() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tourID := chi.URLParam(r, "tourID")

		result, err := h.deps.Services.Tours.SortTour(r.Context(), claims.UserID(), tourID)
		if err != nil {
			logging.Warn("Tour sort failed",
				"tour_id", tourID,
				"user_id", claims.UserID(),
				"error", err,
			)
			handleServiceError(w, err)
			return
		}

		h.deps.Metrics.ToursSortedTotal.Inc()
		respondWithSuccess(w, http.StatusOK, result)
	}
}
