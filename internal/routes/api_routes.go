package routes

import (
	"github.com/go-chi/chi/v5"

	"roamio/cartographer/internal/api"
	"roamio/cartographer/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers.
// This keeps API route registration separate from the main router setup.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers) {

	r.Route("/api/v1", func(v1 chi.Router) {
		// all v1 routes require a bearer token
		v1.Use(middleware.AuthMiddleware)

		v1.Get("/usage", handlers.GetUsage())

		v1.Route("/trips", func(trips chi.Router) {
			trips.Post("/", handlers.CreateTrip())
			trips.Get("/", handlers.ListTrips())

			trips.Route("/{tripID}", func(trip chi.Router) {
				trip.Get("/", handlers.GetTrip())
				trip.Delete("/", handlers.DeleteTrip())

				trip.Post("/markers", handlers.CreateMarker())
				trip.Get("/markers", handlers.ListMarkers())

				trip.Post("/tours", handlers.CreateTour())
				trip.Get("/tours", handlers.ListTours())
			})
		})

		v1.Route("/markers/{markerID}", func(marker chi.Router) {
			marker.Patch("/", handlers.UpdateMarker())
			marker.Delete("/", handlers.DeleteMarker())
		})

		v1.Route("/tours/{tourID}", func(tour chi.Router) {
			tour.Get("/", handlers.GetTourDetail())
			tour.Patch("/", handlers.RenameTour())
			tour.Delete("/", handlers.DeleteTour())

			tour.Post("/markers", handlers.AttachMarker())
			tour.Get("/markers", handlers.ListTourMarkers())
			tour.Delete("/markers/{markerID}", handlers.DetachMarker())

			tour.Get("/routes", handlers.ListTourRoutes())

			tour.Put("/order", handlers.ReorderMarkers())
			tour.Put("/items/order", handlers.ReorderItems())

			tour.Post("/sort", handlers.SortTour())
		})
	})
}
