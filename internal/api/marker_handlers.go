package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roamio/cartographer/internal/models/dtos"
)

// CreateMarker handles POST /api/v1/trips/{tripID}/markers
func (h *Handlers) CreateMarker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tripID := chi.URLParam(r, "tripID")

		var req dtos.CreateMarkerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		marker, err := h.deps.Services.Markers.CreateMarker(r.Context(), claims.UserID(), tripID, req)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, marker)
	}
}

// ListMarkers handles GET /api/v1/trips/{tripID}/markers
func (h *Handlers) ListMarkers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tripID := chi.URLParam(r, "tripID")

		markers, err := h.deps.Services.Markers.ListMarkers(r.Context(), claims.UserID(), tripID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &markers)
	}
}

// UpdateMarker handles PATCH /api/v1/markers/{markerID}
func (h *Handlers) UpdateMarker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		markerID := chi.URLParam(r, "markerID")

		var req dtos.UpdateMarkerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		marker, err := h.deps.Services.Markers.UpdateMarker(r.Context(), claims.UserID(), markerID, req)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, marker)
	}
}

// DeleteMarker handles DELETE /api/v1/markers/{markerID}
func (h *Handlers) DeleteMarker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		markerID := chi.URLParam(r, "markerID")

		if err := h.deps.Services.Markers.DeleteMarker(r.Context(), claims.UserID(), markerID); err != nil {
			handleServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
