// Package importer loads restaurants, menu items and locations from CSV
// files into the store. Bad rows are counted and reported; they never abort
// a batch.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// Store is the subset of the store the importer writes to.
type Store interface {
	repository.ImportRepository
	repository.RestaurantRepository
	repository.DishRepository
	repository.SettingsRepository
}

// Importer runs CSV import batches against a store.
type Importer struct {
	store       Store
	restaurants *service.RestaurantService
	log         *slog.Logger
	now         func() time.Time
}

// New creates a new importer
func New(store Store, log *slog.Logger) *Importer {
	return &Importer{
		store:       store,
		restaurants: service.NewRestaurantService(store, store, log),
		log:         log,
		now:         time.Now,
	}
}

// ImportRestaurants upserts restaurants by slug.
func (im *Importer) ImportRestaurants(ctx context.Context, paths ...string) (Summary, error) {
	records, err := parseFiles(ctx, paths)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	var touched []int64
	for _, rec := range records {
		if rec.err != nil {
			sum.addError("%s: %v", rec, rec.err)
			continue
		}
		r, err := im.restaurantFromRecord(rec)
		if err != nil {
			sum.addError("%s: %v", rec, err)
			continue
		}
		if err := im.store.UpsertRestaurant(ctx, r); err != nil {
			sum.addError("%s: upsert %s: %v", rec, r.Slug, err)
			continue
		}
		sum.Imported++
		touched = append(touched, r.ID)
	}

	im.refresh(ctx, touched)
	im.log.Info("restaurant import finished", "imported", sum.Imported, "errors", sum.Errors)
	return sum, nil
}

func (im *Importer) restaurantFromRecord(rec record) (*models.Restaurant, error) {
	slug, name := rec.get("slug"), rec.get("name")
	if slug == "" || name == "" {
		return nil, errors.New("slug and name are required")
	}
	now := im.now()
	return &models.Restaurant{
		Name:               name,
		Slug:               slug,
		WebsiteURL:         rec.get("website_url"),
		LogoURL:            rec.get("logo_url"),
		IconURL:            rec.get("icon_url"),
		BrandColor:         rec.get("brand_color"),
		NutritionSourceURL: rec.get("nutrition_source_url"),
		LastUpdated:        &now,
	}, nil
}

// ImportMenuItems upserts menu items by (restaurant, name). Rows naming an
// unknown restaurant slug are errors.
func (im *Importer) ImportMenuItems(ctx context.Context, paths ...string) (Summary, error) {
	records, err := parseFiles(ctx, paths)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	bySlug := make(map[string]*models.Restaurant)
	touched := make(map[int64]bool)
	for _, rec := range records {
		if rec.err != nil {
			sum.addError("%s: %v", rec, rec.err)
			continue
		}
		slug := rec.get("restaurant_slug")
		restaurant, ok := bySlug[slug]
		if !ok {
			restaurant, err = im.store.GetRestaurantBySlug(ctx, slug)
			if errors.Is(err, repository.ErrNotFound) {
				sum.addError("%s: restaurant not found: %q", rec, slug)
				continue
			}
			if err != nil {
				return sum, fmt.Errorf("lookup restaurant %s: %w", slug, err)
			}
			bySlug[slug] = restaurant
		}

		item, err := im.menuItemFromRecord(rec)
		if err != nil {
			sum.addError("%s: %v", rec, err)
			continue
		}
		item.RestaurantID = restaurant.ID
		if err := im.store.UpsertMenuItem(ctx, item); err != nil {
			sum.addError("%s: upsert %q: %v", rec, item.Name, err)
			continue
		}
		sum.Imported++
		touched[restaurant.ID] = true
	}

	ids := make([]int64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	im.refresh(ctx, ids)
	im.log.Info("menu item import finished", "imported", sum.Imported, "errors", sum.Errors)
	return sum, nil
}

func (im *Importer) menuItemFromRecord(rec record) (*models.MenuItem, error) {
	name := rec.get("name")
	if name == "" {
		return nil, errors.New("name is required")
	}

	calories, err := strconv.Atoi(rec.get("calories"))
	if err != nil || calories < 0 {
		return nil, fmt.Errorf("invalid calories %q", rec.get("calories"))
	}

	item := &models.MenuItem{
		Name:         name,
		Category:     rec.get("category"),
		ServingSize:  rec.get("serving_size"),
		Calories:     calories,
		IsVegetarian: parseBool(rec.get("is_vegetarian")),
		IsVegan:      parseBool(rec.get("is_vegan")),
		IsGlutenFree: parseBool(rec.get("is_gluten_free")),
		ImageURL:     rec.get("image_url"),
		SourceURL:    rec.get("source_url"),
		IsAvailable:  true,
	}
	now := im.now()
	item.LastVerified = &now

	required := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"protein", &item.Protein},
		{"carbs", &item.Carbs},
		{"fat", &item.Fat},
	}
	for _, m := range required {
		d, err := parseMacro(m.key, rec.get(m.key))
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, fmt.Errorf("%s is required", m.key)
		}
		*m.dst = *d
	}

	if item.Fiber, err = parseMacro("fiber", rec.get("fiber")); err != nil {
		return nil, err
	}
	if item.Sugar, err = parseMacro("sugar", rec.get("sugar")); err != nil {
		return nil, err
	}
	if item.SaturatedFat, err = parseMacro("saturated_fat", rec.get("saturated_fat")); err != nil {
		return nil, err
	}
	if raw := rec.get("sodium"); raw != "" {
		sodium, err := strconv.Atoi(raw)
		if err != nil || sodium < 0 {
			return nil, fmt.Errorf("invalid sodium %q", raw)
		}
		item.Sodium = &sodium
	}
	return item, nil
}

// parseMacro returns nil for an empty value.
func parseMacro(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("invalid %s %q", field, raw)
	}
	d = d.Round(1)
	return &d, nil
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b || strings.EqualFold(raw, "yes")
}

// ImportLocations creates locations for the named chain. Rows whose
// external id is already stored are skipped.
func (im *Importer) ImportLocations(ctx context.Context, chain string, paths ...string) (Summary, error) {
	restaurant, err := im.store.FindRestaurantByName(ctx, chain)
	if errors.Is(err, repository.ErrNotFound) {
		return Summary{}, fmt.Errorf("restaurant %q not found, import it first", chain)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("lookup restaurant %q: %w", chain, err)
	}

	records, err := parseFiles(ctx, paths)
	if err != nil {
		return Summary{}, err
	}

	seen, err := im.externalIDFilter(ctx, len(records))
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, rec := range records {
		if rec.err != nil {
			sum.addError("%s: %v", rec, rec.err)
			continue
		}
		loc, err := locationFromRecord(rec, restaurant)
		if err != nil {
			sum.addError("%s: %v", rec, err)
			continue
		}

		key := strconv.FormatInt(*loc.ExternalID, 10)
		if seen.TestString(key) {
			exists, err := im.store.LocationExternalIDExists(ctx, *loc.ExternalID)
			if err != nil {
				return sum, fmt.Errorf("check external id %d: %w", *loc.ExternalID, err)
			}
			if exists {
				sum.Skipped++
				continue
			}
		}

		err = im.store.CreateLocation(ctx, loc)
		if errors.Is(err, repository.ErrAlreadyExists) {
			sum.Skipped++
			continue
		}
		if err != nil {
			sum.addError("%s: create %q: %v", rec, loc.Name, err)
			continue
		}
		seen.AddString(key)
		sum.Imported++
	}

	im.refresh(ctx, []int64{restaurant.ID})
	im.log.Info("location import finished",
		"restaurant", restaurant.Name,
		"imported", sum.Imported,
		"skipped", sum.Skipped,
		"errors", sum.Errors,
	)
	return sum, nil
}

// externalIDFilter seeds a bloom filter with every stored external id. A
// negative test means the id is certainly new and the exact store check is
// skipped.
func (im *Importer) externalIDFilter(ctx context.Context, incoming int) (*bloom.BloomFilter, error) {
	existing, err := im.store.ListLocationExternalIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list external ids: %w", err)
	}
	filter := bloom.NewWithEstimates(uint(max(len(existing)+incoming, 1000)), 0.01)
	for _, id := range existing {
		filter.AddString(strconv.FormatInt(id, 10))
	}
	return filter, nil
}

func locationFromRecord(rec record, restaurant *models.Restaurant) (*models.RestaurantLocation, error) {
	externalID, err := strconv.ParseInt(rec.get("osm_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid osm_id %q", rec.get("osm_id"))
	}

	lat, err := decimal.NewFromString(rec.get("latitude"))
	if err != nil || lat.Abs().GreaterThan(decimal.NewFromInt(90)) {
		return nil, fmt.Errorf("invalid coordinates for osm_id %d", externalID)
	}
	lng, err := decimal.NewFromString(rec.get("longitude"))
	if err != nil || lng.Abs().GreaterThan(decimal.NewFromInt(180)) {
		return nil, fmt.Errorf("invalid coordinates for osm_id %d", externalID)
	}

	city := rec.get("city")
	name := rec.get("name")
	switch {
	case city != "":
		name = restaurant.Name + " - " + city
	case name == "":
		name = restaurant.Name
	}

	return &models.RestaurantLocation{
		RestaurantID: restaurant.ID,
		ExternalID:   &externalID,
		Name:         name,
		Latitude:     lat.Round(7),
		Longitude:    lng.Round(7),
		Address:      rec.get("address"),
		City:         city,
		State:        rec.get("state"),
		Postcode:     rec.get("postcode"),
		Phone:        rec.get("phone"),
		Website:      rec.get("website"),
		IsActive:     true,
		DataSource:   models.SourceOSM,
		AmenityType:  rec.get("amenity_type"),
	}, nil
}

// RefreshCounts recomputes cached counters for every restaurant.
func (im *Importer) RefreshCounts(ctx context.Context) (int, error) {
	refreshed, err := im.restaurants.RefreshCounts(ctx)
	return len(refreshed), err
}

// refresh logs failures; a stale counter never fails an import that wrote its rows.
func (im *Importer) refresh(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	if _, err := im.restaurants.RefreshCounts(ctx, ids...); err != nil {
		im.log.Warn("counter refresh incomplete", "error", err)
	}
}
