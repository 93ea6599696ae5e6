package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

// ClientConfig is everything the client needs to render filters and the map.
type ClientConfig struct {
	Filters          []models.FilterConfig
	QuickFilters     []models.QuickFilter
	SortOptions      []models.SortOption
	AppSettings      models.AppSettings
	RestaurantColors map[string]string
}

// SettingsService manages the app settings singleton and the client configuration.
type SettingsService struct {
	settings    repository.SettingsRepository
	restaurants repository.RestaurantRepository
	log         *slog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settings repository.SettingsRepository, restaurants repository.RestaurantRepository, log *slog.Logger) *SettingsService {
	return &SettingsService{settings: settings, restaurants: restaurants, log: log}
}

// GetAppSettings returns the stored settings, or the defaults when none were saved.
func (s *SettingsService) GetAppSettings(ctx context.Context) (models.AppSettings, error) {
	settings, err := s.settings.GetAppSettings(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return models.DefaultAppSettings(), nil
	}
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return *settings, nil
}

// SaveAppSettings creates the singleton on first save and updates it after
// that. Every update increments the version.
func (s *SettingsService) SaveAppSettings(ctx context.Context, settings models.AppSettings) (*models.AppSettings, error) {
	if err := ValidateAppSettings(settings); err != nil {
		return nil, err
	}

	_, err := s.settings.GetAppSettings(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		created, err := s.settings.CreateAppSettings(ctx, settings)
		if err == nil {
			s.log.Info("app settings created", "version", created.Version)
			return created, nil
		}
		if !errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("create settings: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("get settings: %w", err)
	}

	updated, err := s.settings.UpdateAppSettings(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	s.log.Info("app settings updated", "version", updated.Version)
	return updated, nil
}

// ValidateAppSettings checks the fields the client relies on.
func ValidateAppSettings(settings models.AppSettings) error {
	if !filters.ValidDishSort(settings.DefaultSort) {
		return filters.NewValidationError("default_sort", "Invalid sort option: %s", settings.DefaultSort)
	}
	if settings.ItemsPerPage < 1 || settings.ItemsPerPage > filters.MaxDishLimit {
		return filters.NewValidationError("items_per_page", "items_per_page must be between 1 and %d", filters.MaxDishLimit)
	}
	if len(settings.RadiusOptions) == 0 {
		return filters.NewValidationError("radius_options", "radius_options must not be empty")
	}
	for _, r := range settings.RadiusOptions {
		if r <= 0 {
			return filters.NewValidationError("radius_options", "radius_options must be positive")
		}
	}
	if len(settings.DefaultMapCenter) != 2 {
		return filters.NewValidationError("default_map_center", "default_map_center must be [lng, lat]")
	}
	if settings.DefaultMapZoom < 0 || settings.DefaultMapZoom > 22 {
		return filters.NewValidationError("default_map_zoom", "default_map_zoom must be between 0 and 22")
	}
	return nil
}

// GetClientConfig assembles the active filters, quick filters, sort options,
// settings and the restaurant brand color map.
func (s *SettingsService) GetClientConfig(ctx context.Context) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	var err error

	if cfg.Filters, err = s.settings.ListFilterConfigs(ctx); err != nil {
		return nil, fmt.Errorf("list filter configs: %w", err)
	}
	if cfg.QuickFilters, err = s.settings.ListQuickFilters(ctx); err != nil {
		return nil, fmt.Errorf("list quick filters: %w", err)
	}
	if cfg.SortOptions, err = s.settings.ListSortOptions(ctx); err != nil {
		return nil, fmt.Errorf("list sort options: %w", err)
	}
	if cfg.AppSettings, err = s.GetAppSettings(ctx); err != nil {
		return nil, err
	}

	restaurants, err := s.restaurants.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	cfg.RestaurantColors = make(map[string]string, len(restaurants)+1)
	for _, r := range restaurants {
		if r.BrandColor != "" {
			cfg.RestaurantColors[r.Slug] = r.BrandColor
		}
	}
	cfg.RestaurantColors["default"] = models.DefaultBrandColor

	return cfg, nil
}
