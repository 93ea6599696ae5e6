package service

import (
	"context"
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
)

func listLocations(t *testing.T, svc *LocationService, query string) *LocationPage {
	t.Helper()
	values, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("bad query %q: %v", query, err)
	}
	q, err := filters.ParseLocationQuery(values)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", query, err)
	}
	page, err := svc.ListLocations(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return page
}

func locationNames(page *LocationPage) []string {
	names := make([]string, len(page.Items))
	for i, r := range page.Items {
		names[i] = r.Location.Name
	}
	return names
}

func TestLocationService_ListAllActive(t *testing.T) {
	store, _ := newSanFrancisco(t)
	svc := NewLocationService(store)

	page := listLocations(t, svc, "")
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("expected 3 active locations, got total=%d items=%d", page.Total, len(page.Items))
	}
	if page.Limit != 100 {
		t.Errorf("expected default limit 100, got %d", page.Limit)
	}
	if page.Center != nil || page.RadiusMiles != nil {
		t.Error("expected no distance metadata without a center")
	}
	for _, r := range page.Items {
		if r.DistanceMiles != nil {
			t.Errorf("expected no distance for %s", r.Location.Name)
		}
	}
}

func TestLocationService_SortByRestaurantThenCity(t *testing.T) {
	store, restaurants := newSanFrancisco(t)
	addLocation(t, store, restaurants["sweetgreen"], "Sweetgreen - Berkeley", "Berkeley", "37.8716", "-122.2727", true)
	svc := NewLocationService(store)

	want := []string{"Chipotle - Oakland", "Chipotle - Downtown SF", "Chipotle - Mission", "Sweetgreen - Berkeley"}
	if got := locationNames(listLocations(t, svc, "")); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLocationService_BoundingBox(t *testing.T) {
	store, _ := newSanFrancisco(t)
	svc := NewLocationService(store)

	page := listLocations(t, svc, "bbox=37.75,-122.43,37.78,-122.41")
	want := []string{"Chipotle - Downtown SF", "Chipotle - Mission"}
	if got := locationNames(page); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLocationService_RadiusFromCenter(t *testing.T) {
	store, _ := newSanFrancisco(t)
	svc := NewLocationService(store)

	page := listLocations(t, svc, "lat=37.7749&lng=-122.4194&radius=1")
	want := []string{"Chipotle - Downtown SF"}
	if got := locationNames(page); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if page.Center == nil || page.Center.Lat != 37.7749 || page.Center.Lng != -122.4194 {
		t.Errorf("expected echoed center, got %+v", page.Center)
	}
	if page.RadiusMiles == nil || *page.RadiusMiles != 1 {
		t.Errorf("expected radius 1, got %v", page.RadiusMiles)
	}
}

func TestLocationService_OrderedByDistance(t *testing.T) {
	store, _ := newSanFrancisco(t)
	svc := NewLocationService(store)

	page := listLocations(t, svc, "lat=37.7749&lng=-122.4194")
	want := []string{"Chipotle - Downtown SF", "Chipotle - Mission", "Chipotle - Oakland"}
	if got := locationNames(page); !equalNames(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	prev := -1.0
	for _, r := range page.Items {
		if r.DistanceMiles == nil {
			t.Fatalf("expected distance for %s", r.Location.Name)
		}
		if *r.DistanceMiles < prev {
			t.Errorf("distances not ascending: %v after %v", *r.DistanceMiles, prev)
		}
		prev = *r.DistanceMiles
	}
	if *page.Items[0].DistanceMiles != 0 {
		t.Errorf("expected zero distance at the center, got %v", *page.Items[0].DistanceMiles)
	}
	if *page.RadiusMiles != filters.DefaultRadiusMiles {
		t.Errorf("expected default radius, got %v", *page.RadiusMiles)
	}
}

func TestLocationService_BoundingBoxSkipsRadius(t *testing.T) {
	store, _ := newSanFrancisco(t)
	svc := NewLocationService(store)

	// Center on Oakland with a one mile radius: both San Francisco
	// locations are more than eight miles away but inside the box.
	page := listLocations(t, svc, "bbox=37.75,-122.43,37.78,-122.41&lat=37.8044&lng=-122.2712&radius=1")
	want := []string{"Chipotle - Downtown SF", "Chipotle - Mission"}
	if got := locationNames(page); !equalNames(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, r := range page.Items {
		if r.DistanceMiles == nil || *r.DistanceMiles < 8 {
			t.Errorf("expected informational distance over 8 miles for %s, got %v", r.Location.Name, r.DistanceMiles)
		}
	}
}

func TestLocationService_RestaurantFilterAndLimit(t *testing.T) {
	store, restaurants := newSanFrancisco(t)
	addLocation(t, store, restaurants["sweetgreen"], "Sweetgreen - SF", "San Francisco", "37.7800", "-122.4100", true)
	svc := NewLocationService(store)

	page := listLocations(t, svc, "restaurants=chipotle")
	if page.Total != 3 {
		t.Errorf("expected 3 chipotle locations, got %d", page.Total)
	}
	for _, r := range page.Items {
		if r.Location.Restaurant.Slug != "chipotle" {
			t.Errorf("unexpected restaurant %s", r.Location.Restaurant.Slug)
		}
	}

	page = listLocations(t, svc, "restaurants=chipotle&limit=2")
	if len(page.Items) != 2 || page.Limit != 2 || page.Total != 3 {
		t.Errorf("expected 2 of 3 with limit 2, got items=%d limit=%d total=%d", len(page.Items), page.Limit, page.Total)
	}
}

func TestLocationService_GetLocation(t *testing.T) {
	store, restaurants := newCatalog(t)
	active := addLocation(t, store, restaurants["chipotle"], "Chipotle - Downtown SF", "San Francisco", "37.7749", "-122.4194", true)
	closed := addLocation(t, store, restaurants["chipotle"], "Chipotle - Closed", "San Francisco", "37.7000", "-122.4000", false)
	svc := NewLocationService(store)
	ctx := context.Background()

	got, err := svc.GetLocation(ctx, active.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got.Latitude.InexactFloat64()-37.7749) > 1e-9 {
		t.Errorf("unexpected latitude %s", got.Latitude)
	}
	if _, err := svc.GetLocation(ctx, closed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found for inactive location, got %v", err)
	}
	if _, err := svc.GetLocation(ctx, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
