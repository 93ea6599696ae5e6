package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/nutrition"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

// MinBestRatioCalories excludes low-calorie items from the best ratio highlight.
const MinBestRatioCalories = 200

// Stats summarizes the catalog.
type Stats struct {
	TotalDishes      int
	TotalRestaurants int
	LastUpdated      *time.Time
	TopProteinDish   *models.MenuItem
	BestRatioDish    *models.MenuItem
}

// StatsService computes catalog statistics.
type StatsService struct {
	dishes      repository.DishRepository
	restaurants repository.RestaurantRepository
}

// NewStatsService creates a new stats service
func NewStatsService(dishes repository.DishRepository, restaurants repository.RestaurantRepository) *StatsService {
	return &StatsService{dishes: dishes, restaurants: restaurants}
}

// GetStats returns dish and restaurant totals plus the highest protein dish
// and the best protein per 100 calorie dish with at least 200 calories.
func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	items, err := s.dishes.ListAvailableDishes(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	restaurants, err := s.restaurants.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	lastUpdated, err := s.dishes.LastDishUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("last dish update: %w", err)
	}

	stats := &Stats{
		TotalDishes:      len(items),
		TotalRestaurants: len(restaurants),
		LastUpdated:      lastUpdated,
	}

	for i := range items {
		item := &items[i]
		if stats.TopProteinDish == nil || item.Protein.GreaterThan(stats.TopProteinDish.Protein) {
			stats.TopProteinDish = item
		}
		if item.Calories < MinBestRatioCalories {
			continue
		}
		if stats.BestRatioDish == nil ||
			nutrition.ProteinRatio(item.Protein, item.Calories).GreaterThan(
				nutrition.ProteinRatio(stats.BestRatioDish.Protein, stats.BestRatioDish.Calories)) {
			stats.BestRatioDish = item
		}
	}
	return stats, nil
}
