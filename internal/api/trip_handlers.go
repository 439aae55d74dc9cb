package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roamio/cartographer/internal/models/dtos"
)

// CreateTrip handles POST /api/v1/trips
func (h *Handlers) CreateTrip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}

		var req dtos.CreateTripReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		trip, err := h.deps.Services.Trips.CreateTrip(r.Context(), claims.UserID(), req.Name)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, trip)
	}
}

// ListTrips handles GET /api/v1/trips
func (h *Handlers) ListTrips() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}

		trips, err := h.deps.Services.Trips.ListTrips(r.Context(), claims.UserID())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &trips)
	}
}

// GetTrip handles GET /api/v1/trips/{tripID}
func (h *Handlers) GetTrip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tripID := chi.URLParam(r, "tripID")

		trip, err := h.deps.Services.Trips.GetTrip(r.Context(), claims.UserID(), tripID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, trip)
	}
}

// DeleteTrip handles DELETE /api/v1/trips/{tripID}
func (h *Handlers) DeleteTrip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}
		tripID := chi.URLParam(r, "tripID")

		if err := h.deps.Services.Trips.DeleteTrip(r.Context(), claims.UserID(), tripID); err != nil {
			handleServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
