package api

import (
	"os"
	"strconv"

	"roamio/cartographer/internal/common"
	"roamio/cartographer/internal/db"
	"roamio/cartographer/internal/db/repositories"
	"roamio/cartographer/internal/logging"
	"roamio/cartographer/internal/metrics"
	"roamio/cartographer/internal/providers"
	"roamio/cartographer/internal/services"
)

type Repositories struct {
	Trips       *repositories.TripRepository
	Markers     *repositories.MarkerRepository
	Tours       *repositories.TourRepository
	TourMarkers *repositories.TourMarkerRepository
	Routes      *repositories.RouteRepository
	Quota       *repositories.QuotaRepository
}

type Services struct {
	Cache   common.CacheInterface
	Quota   *services.QuotaService
	Trips   *services.TripService
	Markers *services.MarkerService
	Tours   *services.TourService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Routing  providers.RoutingProvider
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories, services and the routing provider.
// Postgres connections (db.DB, db.PgDB) must already be open.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Trips:       repositories.NewTripRepository(db.PgDB),
		Markers:     repositories.NewMarkerRepository(db.PgDB),
		Tours:       repositories.NewTourRepository(db.PgDB),
		TourMarkers: repositories.NewTourMarkerRepository(db.PgDB),
		Routes:      repositories.NewRouteRepository(db.PgDB),
		Quota:       repositories.NewQuotaRepository(db.DB),
	}

	cacheSvc := initCache()

	quotaSvc := services.NewQuotaService(repos.Quota, monthlyLimitFromEnv())
	routingProvider := providers.NewMapboxProvider(quotaSvc)
	routingProvider.Metrics = metricsReg

	svcs := &Services{
		Cache:   cacheSvc,
		Quota:   quotaSvc,
		Trips:   services.NewTripService(repos.Trips),
		Markers: services.NewMarkerService(repos.Trips, repos.Markers),
		Tours: services.NewTourService(
			repos.Trips,
			repos.Tours,
			repos.Markers,
			repos.TourMarkers,
			repos.Routes,
			quotaSvc,
			routingProvider,
			cacheSvc,
		),
	}
	svcs.Tours.Metrics = metricsReg

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Routing:  routingProvider,
		Metrics:  metricsReg,
	}, nil
}

// initCache prefers Redis when REDIS_HOST is set and falls back to the
// in-process cache when the connection fails
func initCache() common.CacheInterface {
	if os.Getenv("REDIS_HOST") != "" {
		redisCache, err := common.NewRedisCacheService()
		if err == nil {
			logging.Info("Using Redis cache")
			return redisCache
		}
		logging.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
	}
	return common.NewCacheService(600, 1200)
}

func monthlyLimitFromEnv() int {
	raw := os.Getenv("MATRIX_MONTHLY_LIMIT")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		logging.Warn("Invalid MATRIX_MONTHLY_LIMIT, using default", "value", raw)
		return 0
	}
	return limit
}
