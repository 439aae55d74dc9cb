package api

import (
	"net/http"

	"roamio/cartographer/internal/auth"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// requireClaims pulls the authenticated user from the request context.
// The auth middleware sets these; a nil result means the route was
// mounted without it.
func requireClaims(w http.ResponseWriter, r *http.Request) auth.UserClaims {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return nil
	}
	return claims
}
