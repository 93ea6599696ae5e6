package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// RestaurantHandler handles restaurant-related HTTP requests
type RestaurantHandler struct {
	service *service.RestaurantService
	logger  *slog.Logger
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(service *service.RestaurantService, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service: service,
		logger:  logger,
	}
}

// ListRestaurants handles GET /restaurants
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.service.ListRestaurants(r.Context())
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	data := make([]restaurantSummary, len(restaurants))
	for i, restaurant := range restaurants {
		data[i] = newRestaurantSummary(restaurant)
	}
	WriteJSON(w, http.StatusOK, ListResponse{Data: data, Meta: countMeta{Total: len(data)}}, h.logger)
}

// GetRestaurant handles GET /restaurants/{slug}
// The detail embeds the restaurant's available dishes, highest protein first.
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetRestaurant(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, restaurantWithDishes{
		restaurantDetail: newRestaurantDetail(detail.Restaurant),
		Dishes:           newDishSummaries(detail.Dishes),
	}, h.logger)
}

// RefreshCounts handles POST /admin/restaurants/refresh-counts
func (h *RestaurantHandler) RefreshCounts(w http.ResponseWriter, r *http.Request) {
	refreshed, err := h.service.RefreshCounts(r.Context())
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	data := make([]restaurantDetail, len(refreshed))
	for i, restaurant := range refreshed {
		data[i] = newRestaurantDetail(restaurant)
	}
	h.logger.Info("restaurant counts refreshed", "restaurants", len(data))
	WriteJSON(w, http.StatusOK, ListResponse{Data: data, Meta: countMeta{Total: len(data)}}, h.logger)
}
