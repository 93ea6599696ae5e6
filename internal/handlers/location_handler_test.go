package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"testing"
)

func TestListLocations(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/locations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decode[envelope[[]locationSummary, map[string]any]](t, w)

	if len(body.Data) != 3 {
		t.Errorf("expected 3 active locations, got %d", len(body.Data))
	}
	if body.Meta["total"] != 3.0 || body.Meta["limit"] != 100.0 {
		t.Errorf("unexpected meta %+v", body.Meta)
	}
	if _, ok := body.Meta["center_lat"]; ok {
		t.Error("expected no center metadata without lat/lng")
	}
	if body.Data[0].Latitude != "37.8044000" {
		t.Errorf("expected seven decimal coordinates, got %s", body.Data[0].Latitude)
	}
}

func TestListLocations_BoundingBox(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/locations?bbox=37.75,-122.43,37.78,-122.41", "")
	body := decode[envelope[[]locationSummary, map[string]any]](t, w)

	names := make([]string, len(body.Data))
	for i, loc := range body.Data {
		names[i] = loc.Name
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "Chipotle - Downtown SF" || names[1] != "Chipotle - Mission" {
		t.Errorf("expected downtown and mission, got %v", names)
	}
}

func TestListLocations_Distance(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/locations?lat=37.7749&lng=-122.4194", "")
	body := decode[envelope[[]locationSummary, map[string]any]](t, w)

	if len(body.Data) != 3 {
		t.Fatalf("expected 3 locations within the default radius, got %d", len(body.Data))
	}
	prev := -1.0
	for _, loc := range body.Data {
		if loc.DistanceMiles == nil {
			t.Fatalf("expected distance_miles for %s", loc.Name)
		}
		if *loc.DistanceMiles < prev {
			t.Errorf("expected ascending distances, got %v after %v", *loc.DistanceMiles, prev)
		}
		prev = *loc.DistanceMiles
	}
	if *body.Data[1].DistanceMiles != 1.07 {
		t.Errorf("expected mission at 1.07 miles, got %v", *body.Data[1].DistanceMiles)
	}
	if body.Meta["center_lat"] != 37.7749 || body.Meta["center_lng"] != -122.4194 || body.Meta["radius_miles"] != 25.0 {
		t.Errorf("unexpected distance meta %+v", body.Meta)
	}
}

func TestListLocations_Radius(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/locations?lat=37.7749&lng=-122.4194&radius=1", "")
	body := decode[envelope[[]locationSummary, map[string]any]](t, w)

	if len(body.Data) != 1 || body.Data[0].Name != "Chipotle - Downtown SF" {
		t.Errorf("expected only downtown within 1 mile, got %+v", body.Data)
	}
	if body.Meta["radius_miles"] != 1.0 {
		t.Errorf("expected radius 1, got %v", body.Meta["radius_miles"])
	}
}

func TestListLocations_Limit(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query     string
		wantLen   int
		wantLimit float64
	}{
		{"limit=2", 2, 2},
		{"limit=abc", 3, 100},
		{"limit=0", 3, 100},
		{"limit=1000", 3, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/locations?"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			body := decode[envelope[[]locationSummary, map[string]any]](t, w)
			if len(body.Data) != tt.wantLen || body.Meta["limit"] != tt.wantLimit || body.Meta["total"] != 3.0 {
				t.Errorf("unexpected result len=%d meta=%+v", len(body.Data), body.Meta)
			}
		})
	}
}

func TestListLocations_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		field string
	}{
		{"bbox=invalid", "bbox"},
		{"bbox=1,2,3", "bbox"},
		{"lat=north&lng=-122.4", "lat/lng"},
		{"lat=37.7&lng=west", "lat/lng"},
		{"lat=37.7&lng=-122.4&radius=far", "lat/lng"},
		{"lat=1e400&lng=-122.4", "lat/lng"},
		{"lat=37.7&lng=-122.4&radius=1e400", "lat/lng"},
		{"lat=95&lng=-122.4", "lat/lng"},
		{"bbox=1e-100000000,-122.43,37.78,-122.41", "bbox"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assertError(t, s.do(t, http.MethodGet, "/locations?"+tt.query, ""), http.StatusBadRequest, CodeInvalidFilter, tt.field)
		})
	}
}

func TestGetLocation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/locations/%d", s.ids["Chipotle - Downtown SF"]), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decode[locationDetail](t, w)
	if body.Name != "Chipotle - Downtown SF" || body.City != "San Francisco" || body.State != "CA" {
		t.Errorf("unexpected detail %+v", body)
	}
	if body.DataSource != "osm" || body.Country != "US" || body.Restaurant.Slug != "chipotle" {
		t.Errorf("unexpected detail %+v", body)
	}

	assertError(t, s.do(t, http.MethodGet, fmt.Sprintf("/locations/%d", s.ids["Chipotle - Closed"]), ""), http.StatusNotFound, CodeNotFound, "")
	assertError(t, s.do(t, http.MethodGet, "/locations/99999", ""), http.StatusNotFound, CodeNotFound, "")
}
