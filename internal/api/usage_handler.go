package api

import (
	"net/http"
)

// GetUsage handles GET /api/v1/usage and reports the routing quota for
// the current calendar month.
func (h *Handlers) GetUsage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := requireClaims(w, r)
		if claims == nil {
			return
		}

		stats, err := h.deps.Services.Quota.UsageStats(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}

		h.deps.Metrics.QuotaUsage.Set(float64(stats.Count))
		respondWithSuccess(w, http.StatusOK, stats)
	}
}
