package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/graze-api/internal/config"
	"github.com/Lixing-Zhang/graze-api/internal/handlers"
	"github.com/Lixing-Zhang/graze-api/internal/middleware"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// newRouter wires services and handlers over store and mounts every route.
func newRouter(cfg *config.Config, store repository.Store, log *slog.Logger) http.Handler {
	// Initialize services
	dishService := service.NewDishService(store)
	restaurantService := service.NewRestaurantService(store, store, log)
	locationService := service.NewLocationService(store)
	flagService := service.NewFlagService(store, store, store)
	statsService := service.NewStatsService(store, store)
	settingsService := service.NewSettingsService(store, store, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(store, log)
	dishHandler := handlers.NewDishHandler(dishService, log)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService, log)
	locationHandler := handlers.NewLocationHandler(locationService, log)
	flagHandler := handlers.NewFlagHandler(flagService, log)
	statsHandler := handlers.NewStatsHandler(statsService, log)
	configHandler := handlers.NewConfigHandler(settingsService, log)

	responseCache := middleware.NewResponseCache(cfg.Cache.TTL)
	cached := func(ttl time.Duration) func(http.Handler) http.Handler {
		if !cfg.Cache.Enabled {
			return func(next http.Handler) http.Handler { return next }
		}
		return responseCache.Cache(ttl)
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"X-Cache", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerMinute, log))

		r.Group(func(r chi.Router) {
			r.Use(cached(cfg.Cache.TTL))
			r.Get("/dishes", dishHandler.ListDishes)
			r.Get("/dishes/{id}", dishHandler.GetDish)
			r.Get("/restaurants", restaurantHandler.ListRestaurants)
			r.Get("/restaurants/{slug}", restaurantHandler.GetRestaurant)
			r.Get("/config/all", configHandler.GetConfig)
		})
		r.With(cached(cfg.Cache.StatsTTL)).Get("/stats", statsHandler.GetStats)

		// Location answers depend on the caller's position and are not cached
		r.Get("/locations", locationHandler.ListLocations)
		r.Get("/locations/{id}", locationHandler.GetLocation)

		r.Post("/flags", flagHandler.CreateDataFlag)
		r.Post("/location-flags", flagHandler.CreateLocationFlag)

		if len(cfg.Auth.APIKeys) == 0 {
			log.Warn("no ADMIN_API_KEYS configured, admin routes disabled")
			return
		}
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.Auth, log))
			r.Use(responseCache.InvalidateOnWrite)
			r.Post("/restaurants/refresh-counts", restaurantHandler.RefreshCounts)
			r.Post("/flags/{id}/resolve", flagHandler.ResolveDataFlag)
			r.Post("/location-flags/{id}/resolve", flagHandler.ResolveLocationFlag)
			r.Put("/settings", configHandler.UpdateSettings)
		})
	})

	return r
}
