package api

import (
	"encoding/json"
	"net/http"
	"time"

	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/models/dtos"
	"roamio/cartographer/internal/providers"
	"roamio/cartographer/internal/services"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := dtos.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := dtos.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(resp)
}

// respondWithQuotaError includes the usage snapshot so clients can show
// when the window resets.
func respondWithQuotaError(w http.ResponseWriter, message string, usage *dtos.UsageStats) {
	resp := dtos.APIResponse[dtos.UsageStats]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
		Data:      usage,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(resp)
}

func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case constants.ErrCodeInvalidArgument,
		constants.ErrCodeInvalidInput,
		constants.ErrCodeCrossTripReference,
		constants.ErrCodeDuplicateTourName,
		constants.ErrCodeMarkerNotInTour,
		constants.ErrCodeSubtourNotInTour,
		constants.ErrCodeUnknownItemType:
		return http.StatusUnprocessableEntity
	case constants.ErrCodeQuotaExceeded:
		return http.StatusTooManyRequests
	case constants.ErrCodeProviderUnavailable, constants.ErrCodeProviderError:
		return http.StatusServiceUnavailable
	case constants.ErrCodeNotFound:
		return http.StatusNotFound
	case constants.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError maps domain and provider failures onto HTTP
// statuses. Anything without a recognized code becomes a 500 with a
// generic message so internals never leak.
func handleServiceError(w http.ResponseWriter, err error) {
	if svcErr, ok := services.AsServiceError(err); ok {
		if svcErr.Code == constants.ErrCodeQuotaExceeded {
			respondWithQuotaError(w, svcErr.Message, svcErr.Usage)
			return
		}
		respondWithError(w, mapErrorCodeToHTTPStatus(svcErr.Code), svcErr.Message)
		return
	}

	if provErr, ok := providers.AsProviderError(err); ok {
		respondWithError(w, mapErrorCodeToHTTPStatus(provErr.Code), provErr.Message)
		return
	}

	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}
