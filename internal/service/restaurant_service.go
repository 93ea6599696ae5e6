package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

// RestaurantDetail is a restaurant with its available dishes, highest protein first.
type RestaurantDetail struct {
	Restaurant models.Restaurant
	Dishes     []models.MenuItem
}

// RestaurantService handles restaurant reads and counter maintenance.
type RestaurantService struct {
	restaurants repository.RestaurantRepository
	dishes      repository.DishRepository
	log         *slog.Logger
}

// NewRestaurantService creates a new restaurant service
func NewRestaurantService(restaurants repository.RestaurantRepository, dishes repository.DishRepository, log *slog.Logger) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, dishes: dishes, log: log}
}

// ListRestaurants returns every restaurant ordered by name.
func (s *RestaurantService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	restaurants, err := s.restaurants.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurant returns a restaurant by slug along with its available dishes.
func (s *RestaurantService) GetRestaurant(ctx context.Context, slug string) (*RestaurantDetail, error) {
	r, err := s.restaurants.GetRestaurantBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", slug, err)
	}

	items, err := s.dishes.ListAvailableDishes(ctx, []string{slug})
	if err != nil {
		return nil, fmt.Errorf("list dishes for %s: %w", slug, err)
	}
	dishes := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.RestaurantID == r.ID {
			dishes = append(dishes, item)
		}
	}
	SortDishes(dishes, filters.SortProteinDesc, "")

	return &RestaurantDetail{Restaurant: *r, Dishes: dishes}, nil
}

// RefreshCounts recomputes item_count and location_count for the given
// restaurants, or for all of them when ids is empty. A failure on one
// restaurant is logged and does not stop the rest.
func (s *RestaurantService) RefreshCounts(ctx context.Context, ids ...int64) ([]models.Restaurant, error) {
	if len(ids) == 0 {
		all, err := s.restaurants.ListRestaurants(ctx)
		if err != nil {
			return nil, fmt.Errorf("list restaurants: %w", err)
		}
		for _, r := range all {
			ids = append(ids, r.ID)
		}
	}

	refreshed := make([]models.Restaurant, 0, len(ids))
	var firstErr error
	for _, id := range ids {
		r, err := s.restaurants.RefreshRestaurantCounts(ctx, id)
		if err != nil {
			s.log.Error("failed to refresh restaurant counts", "restaurant_id", id, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("refresh restaurant %d: %w", id, err)
			}
			continue
		}
		refreshed = append(refreshed, *r)
	}
	return refreshed, firstErr
}
