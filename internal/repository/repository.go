package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// DishRepository reads menu items. Unavailable items are never returned.
type DishRepository interface {
	// ListAvailableDishes returns available items ordered by id, narrowed to
	// the given restaurant slugs when any are supplied.
	ListAvailableDishes(ctx context.Context, restaurantSlugs []string) ([]models.MenuItem, error)
	// SearchAvailableDishes returns available items ordered by id that may
	// match q. A store narrows as far as it can; the result is a superset of
	// the matches, so callers still apply the full predicate set.
	SearchAvailableDishes(ctx context.Context, q filters.DishQuery) ([]models.MenuItem, error)
	GetAvailableDish(ctx context.Context, id int64) (*models.MenuItem, error)
	// MenuItemExists reports whether id names an available item.
	MenuItemExists(ctx context.Context, id int64) (bool, error)
	LastDishUpdate(ctx context.Context) (*time.Time, error)
}

// RestaurantRepository reads restaurants and maintains their cached counters.
type RestaurantRepository interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	// RefreshRestaurantCounts recomputes item_count and location_count from
	// live counts. It is idempotent.
	RefreshRestaurantCounts(ctx context.Context, restaurantID int64) (*models.Restaurant, error)
}

// LocationRepository reads restaurant locations. Inactive locations are never returned.
type LocationRepository interface {
	ListActiveLocations(ctx context.Context, restaurantSlugs []string) ([]models.RestaurantLocation, error)
	GetActiveLocation(ctx context.Context, id int64) (*models.RestaurantLocation, error)
	LocationExists(ctx context.Context, id int64) (bool, error)
}

// FlagRepository stores user reports.
type FlagRepository interface {
	CreateDataFlag(ctx context.Context, flag *models.DataFlag) error
	CreateLocationFlag(ctx context.Context, flag *models.LocationFlag) error
	ResolveDataFlag(ctx context.Context, id string) error
	ResolveLocationFlag(ctx context.Context, id string) error
}

// SettingsRepository stores the settings singleton and the client filter configuration.
type SettingsRepository interface {
	GetAppSettings(ctx context.Context) (*models.AppSettings, error)
	// CreateAppSettings fails with ErrAlreadyExists when the singleton is present.
	CreateAppSettings(ctx context.Context, settings models.AppSettings) (*models.AppSettings, error)
	// UpdateAppSettings overwrites the singleton and increments its version.
	UpdateAppSettings(ctx context.Context, settings models.AppSettings) (*models.AppSettings, error)

	ListFilterConfigs(ctx context.Context) ([]models.FilterConfig, error)
	ListQuickFilters(ctx context.Context) ([]models.QuickFilter, error)
	ListSortOptions(ctx context.Context) ([]models.SortOption, error)
	ReplaceClientConfig(ctx context.Context, filters []models.FilterConfig, quick []models.QuickFilter, sorts []models.SortOption) error
}

// ImportRepository is the write side used by batch imports.
type ImportRepository interface {
	UpsertRestaurant(ctx context.Context, r *models.Restaurant) error
	FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error)
	UpsertMenuItem(ctx context.Context, item *models.MenuItem) error
	ListLocationExternalIDs(ctx context.Context) ([]int64, error)
	LocationExternalIDExists(ctx context.Context, externalID int64) (bool, error)
	// CreateLocation fails with ErrAlreadyExists on a duplicate external id.
	CreateLocation(ctx context.Context, loc *models.RestaurantLocation) error
}

// Store is the full persistent store.
type Store interface {
	DishRepository
	RestaurantRepository
	LocationRepository
	FlagRepository
	SettingsRepository
	ImportRepository
	Ping(ctx context.Context) error
}
