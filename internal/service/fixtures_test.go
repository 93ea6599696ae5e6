package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

type dishFixture struct {
	name      string
	category  string
	calories  int
	protein   string
	carbs     string
	fat       string
	available bool
}

// newCatalog seeds two restaurants and a small menu.
func newCatalog(t *testing.T) (*repository.InMemoryStore, map[string]*models.Restaurant) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewInMemoryStore()

	restaurants := map[string]*models.Restaurant{
		"chipotle":   {Name: "Chipotle", Slug: "chipotle", BrandColor: "#A81612"},
		"sweetgreen": {Name: "Sweetgreen", Slug: "sweetgreen"},
	}
	for _, slug := range []string{"chipotle", "sweetgreen"} {
		if err := store.UpsertRestaurant(ctx, restaurants[slug]); err != nil {
			t.Fatalf("failed to seed restaurant: %v", err)
		}
	}

	menu := map[string][]dishFixture{
		"chipotle": {
			{"Chicken Burrito Bowl", "bowls", 665, "53.0", "62.0", "22.5", true},
			{"Steak Salad", "salads", 400, "40.0", "20.0", "18.0", true},
			{"Grilled Chicken Tacos", "tacos", 510, "32.0", "45.0", "20.0", true},
			{"Discontinued Chicken Nachos", "sides", 900, "60.0", "90.0", "50.0", false},
		},
		"sweetgreen": {
			{"Harvest Bowl", "bowls", 705, "37.0", "61.0", "38.5", true},
			{"Kale Caesar", "salads", 430, "29.0", "21.0", "28.0", true},
			{"Hummus Side", "sides", 150, "20.0", "10.0", "5.0", true},
		},
	}
	for _, slug := range []string{"chipotle", "sweetgreen"} {
		for _, d := range menu[slug] {
			item := &models.MenuItem{
				RestaurantID: restaurants[slug].ID,
				Name:         d.name,
				Category:     d.category,
				Calories:     d.calories,
				Protein:      decimal.RequireFromString(d.protein),
				Carbs:        decimal.RequireFromString(d.carbs),
				Fat:          decimal.RequireFromString(d.fat),
				IsAvailable:  d.available,
			}
			if err := store.UpsertMenuItem(ctx, item); err != nil {
				t.Fatalf("failed to seed item: %v", err)
			}
		}
	}
	return store, restaurants
}

// addLocation seeds one location and returns it.
func addLocation(t *testing.T, store *repository.InMemoryStore, r *models.Restaurant, name, city, lat, lng string, active bool) *models.RestaurantLocation {
	t.Helper()
	loc := &models.RestaurantLocation{
		RestaurantID: r.ID,
		Name:         name,
		City:         city,
		State:        "CA",
		Latitude:     decimal.RequireFromString(lat),
		Longitude:    decimal.RequireFromString(lng),
		IsActive:     active,
	}
	if err := store.CreateLocation(context.Background(), loc); err != nil {
		t.Fatalf("failed to seed location: %v", err)
	}
	return loc
}

// newSanFrancisco seeds three active Chipotle locations and one closed one.
func newSanFrancisco(t *testing.T) (*repository.InMemoryStore, map[string]*models.Restaurant) {
	t.Helper()
	store, restaurants := newCatalog(t)
	chipotle := restaurants["chipotle"]
	addLocation(t, store, chipotle, "Chipotle - Downtown SF", "San Francisco", "37.7749", "-122.4194", true)
	addLocation(t, store, chipotle, "Chipotle - Mission", "San Francisco", "37.7599", "-122.4148", true)
	addLocation(t, store, chipotle, "Chipotle - Oakland", "Oakland", "37.8044", "-122.2712", true)
	addLocation(t, store, chipotle, "Chipotle - Closed", "San Francisco", "37.7000", "-122.4000", false)
	return store, restaurants
}
