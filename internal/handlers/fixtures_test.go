package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
	"github.com/Lixing-Zhang/graze-api/internal/service"
	"github.com/Lixing-Zhang/graze-api/pkg/logger"
)

type testServer struct {
	store  *repository.InMemoryStore
	router chi.Router
	ids    map[string]int64
}

// newTestServer seeds the San Francisco fixture and mounts every public route.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logger.New("error")
	store := repository.NewInMemoryStore()
	ids := make(map[string]int64)

	chipotle := &models.Restaurant{Name: "Chipotle", Slug: "chipotle", BrandColor: "#A81612"}
	cava := &models.Restaurant{Name: "Cava", Slug: "cava"}
	for _, r := range []*models.Restaurant{chipotle, cava} {
		if err := store.UpsertRestaurant(ctx, r); err != nil {
			t.Fatalf("failed to seed restaurant: %v", err)
		}
	}

	fiber := decimal.RequireFromString("11")
	items := []*models.MenuItem{
		{RestaurantID: chipotle.ID, Name: "Chicken Burrito Bowl", Category: "bowls", Calories: 665,
			Protein: decimal.RequireFromString("53"), Carbs: decimal.RequireFromString("62"), Fat: decimal.RequireFromString("22.5"),
			Fiber: &fiber, IsAvailable: true},
		{RestaurantID: chipotle.ID, Name: "Steak Salad", Category: "salads", Calories: 400,
			Protein: decimal.RequireFromString("40"), Carbs: decimal.RequireFromString("20"), Fat: decimal.RequireFromString("18"),
			IsAvailable: true},
		{RestaurantID: cava.ID, Name: "Chicken Greens Bowl", Category: "bowls", Calories: 500,
			Protein: decimal.RequireFromString("38"), Carbs: decimal.RequireFromString("30"), Fat: decimal.RequireFromString("25"),
			IsAvailable: true},
		{RestaurantID: cava.ID, Name: "Retired Pita", Category: "sides", Calories: 300,
			Protein: decimal.RequireFromString("10"), Carbs: decimal.RequireFromString("50"), Fat: decimal.RequireFromString("5"),
			IsAvailable: false},
	}
	for _, item := range items {
		if err := store.UpsertMenuItem(ctx, item); err != nil {
			t.Fatalf("failed to seed item: %v", err)
		}
		ids[item.Name] = item.ID
	}

	locations := []struct {
		name, city, lat, lng string
		active               bool
	}{
		{"Chipotle - Downtown SF", "San Francisco", "37.7749", "-122.4194", true},
		{"Chipotle - Mission", "San Francisco", "37.7599", "-122.4148", true},
		{"Chipotle - Oakland", "Oakland", "37.8044", "-122.2712", true},
		{"Chipotle - Closed", "San Francisco", "37.7000", "-122.4000", false},
	}
	for _, l := range locations {
		loc := &models.RestaurantLocation{
			RestaurantID: chipotle.ID,
			Name:         l.name,
			City:         l.city,
			State:        "CA",
			Address:      "123 Market St",
			Latitude:     decimal.RequireFromString(l.lat),
			Longitude:    decimal.RequireFromString(l.lng),
			IsActive:     l.active,
		}
		if err := store.CreateLocation(ctx, loc); err != nil {
			t.Fatalf("failed to seed location: %v", err)
		}
		ids[l.name] = loc.ID
	}

	dishes := NewDishHandler(service.NewDishService(store), log)
	restaurants := NewRestaurantHandler(service.NewRestaurantService(store, store, log), log)
	locs := NewLocationHandler(service.NewLocationService(store), log)
	flags := NewFlagHandler(service.NewFlagService(store, store, store), log)
	stats := NewStatsHandler(service.NewStatsService(store, store), log)
	config := NewConfigHandler(service.NewSettingsService(store, store, log), log)

	r := chi.NewRouter()
	r.Get("/dishes", dishes.ListDishes)
	r.Get("/dishes/{id}", dishes.GetDish)
	r.Get("/restaurants", restaurants.ListRestaurants)
	r.Get("/restaurants/{slug}", restaurants.GetRestaurant)
	r.Post("/admin/restaurants/refresh-counts", restaurants.RefreshCounts)
	r.Get("/locations", locs.ListLocations)
	r.Get("/locations/{id}", locs.GetLocation)
	r.Post("/flags", flags.CreateDataFlag)
	r.Post("/location-flags", flags.CreateLocationFlag)
	r.Post("/admin/flags/{id}/resolve", flags.ResolveDataFlag)
	r.Post("/admin/location-flags/{id}/resolve", flags.ResolveLocationFlag)
	r.Get("/stats", stats.GetStats)
	r.Get("/config/all", config.GetConfig)
	r.Put("/admin/settings", config.UpdateSettings)

	return &testServer{store: store, router: r, ids: ids}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

type envelope[D any, M any] struct {
	Data           D              `json:"data"`
	Meta           M              `json:"meta"`
	FiltersApplied map[string]any `json:"filters_applied"`
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code, field string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	body := decode[ErrorResponse](t, w)
	if body.Error.Code != code {
		t.Errorf("expected code %s, got %s", code, body.Error.Code)
	}
	if body.Error.Field != field {
		t.Errorf("expected field %q, got %q", field, body.Error.Field)
	}
}
