package repository

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
)

// newTestPostgresStore connects to TEST_DATABASE_URL. The tests run against a
// scratch database and are skipped when none is configured.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("skipping postgres test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewPostgresStore(ctx, url, 4)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(store.Close)

	if _, err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	_, err = store.pool.Exec(ctx, `TRUNCATE data_flags, location_flags, restaurant_locations, menu_items, restaurants,
		app_settings, filter_configs, quick_filters, sort_options RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	return store
}

func TestPostgresStore_CatalogRoundTrip(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	r := &models.Restaurant{Name: "Chipotle", Slug: "chipotle", BrandColor: "#A81612"}
	if err := store.UpsertRestaurant(ctx, r); err != nil {
		t.Fatalf("upsert restaurant: %v", err)
	}

	fiber := decimal.RequireFromString("11.0")
	item := &models.MenuItem{
		RestaurantID: r.ID,
		Name:         "Chicken Burrito Bowl",
		Category:     "bowls",
		Calories:     665,
		Protein:      decimal.RequireFromString("53.5"),
		Carbs:        decimal.RequireFromString("62.0"),
		Fat:          decimal.RequireFromString("22.5"),
		Fiber:        &fiber,
		IsAvailable:  true,
	}
	if err := store.UpsertMenuItem(ctx, item); err != nil {
		t.Fatalf("upsert item: %v", err)
	}

	got, err := store.GetAvailableDish(ctx, item.ID)
	if err != nil {
		t.Fatalf("get dish: %v", err)
	}
	if !got.Protein.Equal(item.Protein) || got.Fiber == nil || !got.Fiber.Equal(fiber) {
		t.Errorf("expected decimals to round trip, got protein=%s fiber=%v", got.Protein, got.Fiber)
	}
	if got.Sugar != nil {
		t.Errorf("expected nil sugar, got %s", got.Sugar)
	}
	if got.Restaurant.Slug != "chipotle" {
		t.Errorf("expected joined restaurant, got %+v", got.Restaurant)
	}

	dishes, err := store.ListAvailableDishes(ctx, []string{"chipotle"})
	if err != nil || len(dishes) != 1 {
		t.Fatalf("expected 1 dish, got %d (%v)", len(dishes), err)
	}

	minProtein := decimal.RequireFromString("53.5")
	dishes, err = store.SearchAvailableDishes(ctx, filters.DishQuery{Search: "BURRITO", ProteinMin: &minProtein})
	if err != nil || len(dishes) != 1 {
		t.Fatalf("expected search to match 1 dish, got %d (%v)", len(dishes), err)
	}
	tooHigh := 700
	dishes, err = store.SearchAvailableDishes(ctx, filters.DishQuery{CaloriesMin: &tooHigh})
	if err != nil || len(dishes) != 0 {
		t.Fatalf("expected no dishes above 700 calories, got %d (%v)", len(dishes), err)
	}

	externalID := int64(123456)
	loc := &models.RestaurantLocation{
		RestaurantID: r.ID,
		ExternalID:   &externalID,
		Name:         "Chipotle - San Francisco",
		Latitude:     decimal.RequireFromString("37.7749000"),
		Longitude:    decimal.RequireFromString("-122.4194000"),
		City:         "San Francisco",
		IsActive:     true,
	}
	if err := store.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("create location: %v", err)
	}
	dup := *loc
	if err := store.CreateLocation(ctx, &dup); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	refreshed, err := store.RefreshRestaurantCounts(ctx, r.ID)
	if err != nil {
		t.Fatalf("refresh counts: %v", err)
	}
	if refreshed.ItemCount != 1 || refreshed.LocationCount != 1 {
		t.Errorf("expected counts 1/1, got %d/%d", refreshed.ItemCount, refreshed.LocationCount)
	}

	flag := &models.LocationFlag{ID: uuid.NewString(), LocationID: loc.ID, FlagType: models.LocationFlagClosed, UserIP: "10.0.0.1"}
	if err := store.CreateLocationFlag(ctx, flag); err != nil {
		t.Fatalf("create location flag: %v", err)
	}
	if err := store.ResolveLocationFlag(ctx, flag.ID); err != nil {
		t.Errorf("resolve location flag: %v", err)
	}
}

func TestPostgresStore_AppSettingsVersioning(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	created, err := store.CreateAppSettings(ctx, models.DefaultAppSettings())
	if err != nil {
		t.Fatalf("create settings: %v", err)
	}
	if _, err := store.CreateAppSettings(ctx, models.DefaultAppSettings()); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	created.DefaultMapZoom = 10
	updated, err := store.UpdateAppSettings(ctx, *created)
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("expected version 2, got %d", updated.Version)
	}

	got, err := store.GetAppSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.DefaultMapZoom != 10 || got.Version != 2 {
		t.Errorf("expected zoom 10 version 2, got %+v", got)
	}
}

func TestBuildDishConditions(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	decPtr := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	tests := []struct {
		name  string
		query filters.DishQuery
		where string
		args  []any
	}{
		{
			name:  "no filters",
			where: "m.is_available",
		},
		{
			name:  "restaurants only",
			query: filters.DishQuery{Restaurants: []string{"chipotle"}},
			where: "m.is_available AND r.slug = ANY($1)",
			args:  []any{[]string{"chipotle"}},
		},
		{
			name:  "search matches item or restaurant",
			query: filters.DishQuery{Search: "bowl"},
			where: "m.is_available AND (m.name ILIKE $1 OR r.name ILIKE $1)",
			args:  []any{"%bowl%"},
		},
		{
			name:  "search escapes wildcards",
			query: filters.DishQuery{Search: `50%_off\`},
			where: "m.is_available AND (m.name ILIKE $1 OR r.name ILIKE $1)",
			args:  []any{`%50\%\_off\\%`},
		},
		{
			name: "every predicate",
			query: filters.DishQuery{
				Search:      "chicken",
				CaloriesMin: intPtr(200),
				CaloriesMax: intPtr(700),
				ProteinMin:  decPtr("30"),
				ProteinMax:  decPtr("60.5"),
				CarbsMax:    decPtr("50"),
				FatMin:      decPtr("5"),
				FatMax:      decPtr("25"),
				Categories:  []string{"bowls", "salads"},
				Restaurants: []string{"chipotle", "sweetgreen"},
			},
			where: strings.Join([]string{
				"m.is_available",
				"(m.name ILIKE $1 OR r.name ILIKE $1)",
				"m.calories >= $2",
				"m.calories <= $3",
				"m.protein >= $4::numeric",
				"m.protein <= $5::numeric",
				"m.carbs <= $6::numeric",
				"m.fat >= $7::numeric",
				"m.fat <= $8::numeric",
				"m.category = ANY($9)",
				"r.slug = ANY($10)",
			}, " AND "),
			args: []any{
				"%chicken%", 200, 700, "30", "60.5", "50", "5", "25",
				[]string{"bowls", "salads"}, []string{"chipotle", "sweetgreen"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions, args := buildDishConditions(tt.query)
			if got := strings.Join(conditions, " AND "); got != tt.where {
				t.Errorf("expected where %q, got %q", tt.where, got)
			}
			if len(args) != len(tt.args) || (len(args) > 0 && !reflect.DeepEqual(args, tt.args)) {
				t.Errorf("expected args %#v, got %#v", tt.args, args)
			}
		})
	}
}
