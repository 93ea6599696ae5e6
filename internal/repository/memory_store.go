package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
)

// InMemoryStore implements Store with in-process maps. It backs the tests and
// runs the server when no database is configured.
type InMemoryStore struct {
	mu sync.RWMutex

	restaurants   map[int64]models.Restaurant
	items         map[int64]models.MenuItem
	locations     map[int64]models.RestaurantLocation
	dataFlags     []models.DataFlag
	locationFlags []models.LocationFlag

	settings    map[string]models.AppSettings
	filters     []models.FilterConfig
	quick       []models.QuickFilter
	sortOptions []models.SortOption

	nextID int64
	now    func() time.Time
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		restaurants: make(map[int64]models.Restaurant),
		items:       make(map[int64]models.MenuItem),
		locations:   make(map[int64]models.RestaurantLocation),
		settings:    make(map[string]models.AppSettings),
		now:         time.Now,
	}
}

func (s *InMemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *InMemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// ---- dishes ----

func (s *InMemoryStore) ListAvailableDishes(ctx context.Context, restaurantSlugs []string) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(s.items))
	for _, item := range s.items {
		if !item.IsAvailable {
			continue
		}
		item.Restaurant = s.restaurants[item.RestaurantID]
		if len(restaurantSlugs) > 0 && !slices.Contains(restaurantSlugs, item.Restaurant.Slug) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// SearchAvailableDishes narrows by restaurant only; the dish engine applies
// the remaining predicates.
func (s *InMemoryStore) SearchAvailableDishes(ctx context.Context, q filters.DishQuery) ([]models.MenuItem, error) {
	return s.ListAvailableDishes(ctx, q.Restaurants)
}

func (s *InMemoryStore) GetAvailableDish(ctx context.Context, id int64) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok || !item.IsAvailable {
		return nil, ErrNotFound
	}
	item.Restaurant = s.restaurants[item.RestaurantID]
	return &item, nil
}

func (s *InMemoryStore) MenuItemExists(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	return ok && item.IsAvailable, nil
}

func (s *InMemoryStore) LastDishUpdate(ctx context.Context) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *time.Time
	for _, item := range s.items {
		if last == nil || item.UpdatedAt.After(*last) {
			t := item.UpdatedAt
			last = &t
		}
	}
	return last, nil
}

// ---- restaurants ----

func (s *InMemoryStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restaurants := make([]models.Restaurant, 0, len(s.restaurants))
	for _, r := range s.restaurants {
		restaurants = append(restaurants, r)
	}
	sort.Slice(restaurants, func(i, j int) bool {
		if restaurants[i].Name != restaurants[j].Name {
			return restaurants[i].Name < restaurants[j].Name
		}
		return restaurants[i].ID < restaurants[j].ID
	})
	return restaurants, nil
}

func (s *InMemoryStore) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.restaurants {
		if r.Slug == slug {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) RefreshRestaurantCounts(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.restaurants[restaurantID]
	if !ok {
		return nil, ErrNotFound
	}

	r.ItemCount = 0
	for _, item := range s.items {
		if item.RestaurantID == restaurantID && item.IsAvailable {
			r.ItemCount++
		}
	}
	r.LocationCount = 0
	for _, loc := range s.locations {
		if loc.RestaurantID == restaurantID && loc.IsActive {
			r.LocationCount++
		}
	}
	s.restaurants[restaurantID] = r
	return &r, nil
}

// ---- locations ----

func (s *InMemoryStore) ListActiveLocations(ctx context.Context, restaurantSlugs []string) ([]models.RestaurantLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locations := make([]models.RestaurantLocation, 0, len(s.locations))
	for _, loc := range s.locations {
		if !loc.IsActive {
			continue
		}
		loc.Restaurant = s.restaurants[loc.RestaurantID]
		if len(restaurantSlugs) > 0 && !slices.Contains(restaurantSlugs, loc.Restaurant.Slug) {
			continue
		}
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })
	return locations, nil
}

func (s *InMemoryStore) GetActiveLocation(ctx context.Context, id int64) (*models.RestaurantLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.locations[id]
	if !ok || !loc.IsActive {
		return nil, ErrNotFound
	}
	loc.Restaurant = s.restaurants[loc.RestaurantID]
	return &loc, nil
}

func (s *InMemoryStore) LocationExists(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.locations[id]
	return ok, nil
}

// ---- flags ----

func (s *InMemoryStore) CreateDataFlag(ctx context.Context, flag *models.DataFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.dataFlags, func(f models.DataFlag) bool { return f.ID == flag.ID }) {
		return ErrAlreadyExists
	}
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = s.now()
	}
	s.dataFlags = append(s.dataFlags, *flag)
	return nil
}

func (s *InMemoryStore) CreateLocationFlag(ctx context.Context, flag *models.LocationFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.locationFlags, func(f models.LocationFlag) bool { return f.ID == flag.ID }) {
		return ErrAlreadyExists
	}
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = s.now()
	}
	s.locationFlags = append(s.locationFlags, *flag)
	return nil
}

func (s *InMemoryStore) ResolveDataFlag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.dataFlags, func(f models.DataFlag) bool { return f.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.dataFlags[i].Resolved = true
	return nil
}

func (s *InMemoryStore) ResolveLocationFlag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.locationFlags, func(f models.LocationFlag) bool { return f.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.locationFlags[i].Resolved = true
	return nil
}

// DataFlags returns stored data flags in submission order.
func (s *InMemoryStore) DataFlags() []models.DataFlag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dataFlags)
}

// LocationFlags returns stored location flags in submission order.
func (s *InMemoryStore) LocationFlags() []models.LocationFlag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.locationFlags)
}

// ---- settings ----

func (s *InMemoryStore) GetAppSettings(ctx context.Context) (*models.AppSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[models.AppSettingsKey]
	if !ok {
		return nil, ErrNotFound
	}
	return &settings, nil
}

func (s *InMemoryStore) CreateAppSettings(ctx context.Context, settings models.AppSettings) (*models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.settings[models.AppSettingsKey]; exists {
		return nil, ErrAlreadyExists
	}
	settings.Version = 1
	settings.UpdatedAt = s.now()
	s.settings[models.AppSettingsKey] = settings
	return &settings, nil
}

func (s *InMemoryStore) UpdateAppSettings(ctx context.Context, settings models.AppSettings) (*models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.settings[models.AppSettingsKey]
	if !ok {
		return nil, ErrNotFound
	}
	settings.Version = current.Version + 1
	settings.UpdatedAt = s.now()
	s.settings[models.AppSettingsKey] = settings
	return &settings, nil
}

func (s *InMemoryStore) ListFilterConfigs(ctx context.Context) ([]models.FilterConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]models.FilterConfig, 0, len(s.filters))
	for _, f := range s.filters {
		if f.IsActive {
			active = append(active, f)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Order != active[j].Order {
			return active[i].Order < active[j].Order
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

func (s *InMemoryStore) ListQuickFilters(ctx context.Context) ([]models.QuickFilter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]models.QuickFilter, 0, len(s.quick))
	for _, q := range s.quick {
		if q.IsActive {
			active = append(active, q)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Order != active[j].Order {
			return active[i].Order < active[j].Order
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

func (s *InMemoryStore) ListSortOptions(ctx context.Context) ([]models.SortOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]models.SortOption, 0, len(s.sortOptions))
	for _, o := range s.sortOptions {
		if o.IsActive {
			active = append(active, o)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Order != active[j].Order {
			return active[i].Order < active[j].Order
		}
		return active[i].Value < active[j].Value
	})
	return active, nil
}

func (s *InMemoryStore) ReplaceClientConfig(ctx context.Context, filters []models.FilterConfig, quick []models.QuickFilter, sorts []models.SortOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = slices.Clone(filters)
	s.quick = slices.Clone(quick)
	s.sortOptions = slices.Clone(sorts)
	return nil
}

// ---- imports ----

func (s *InMemoryStore) UpsertRestaurant(ctx context.Context, r *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.restaurants {
		if existing.Slug == r.Slug {
			r.ID = id
			r.CreatedAt = existing.CreatedAt
			r.ItemCount = existing.ItemCount
			r.LocationCount = existing.LocationCount
			s.restaurants[id] = *r
			return nil
		}
	}
	r.ID = s.id()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.restaurants[r.ID] = *r
	return nil
}

func (s *InMemoryStore) FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.restaurants {
		if strings.EqualFold(r.Name, name) {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) UpsertMenuItem(ctx context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[item.RestaurantID]; !ok {
		return ErrNotFound
	}
	now := s.now()
	item.UpdatedAt = now
	for id, existing := range s.items {
		if existing.RestaurantID == item.RestaurantID && existing.Name == item.Name {
			item.ID = id
			item.CreatedAt = existing.CreatedAt
			s.items[id] = *item
			return nil
		}
	}
	item.ID = s.id()
	item.CreatedAt = now
	s.items[item.ID] = *item
	return nil
}

func (s *InMemoryStore) ListLocationExternalIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.locations))
	for _, loc := range s.locations {
		if loc.ExternalID != nil {
			ids = append(ids, *loc.ExternalID)
		}
	}
	return ids, nil
}

func (s *InMemoryStore) LocationExternalIDExists(ctx context.Context, externalID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hasExternalID(externalID), nil
}

func (s *InMemoryStore) hasExternalID(externalID int64) bool {
	for _, loc := range s.locations {
		if loc.ExternalID != nil && *loc.ExternalID == externalID {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) CreateLocation(ctx context.Context, loc *models.RestaurantLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[loc.RestaurantID]; !ok {
		return ErrNotFound
	}
	if loc.ExternalID != nil && s.hasExternalID(*loc.ExternalID) {
		return ErrAlreadyExists
	}
	if loc.Country == "" {
		loc.Country = "US"
	}
	if loc.DataSource == "" {
		loc.DataSource = models.SourceOSM
	}
	now := s.now()
	loc.ID = s.id()
	loc.CreatedAt = now
	loc.UpdatedAt = now
	s.locations[loc.ID] = *loc
	return nil
}
