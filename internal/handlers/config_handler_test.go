package handlers

import (
	"net/http"
	"testing"
)

func TestGetConfig(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/config/all", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decode[map[string]any](t, w)

	for _, key := range []string{"filters", "quick_filters", "sort_options", "app_settings", "restaurant_colors", "version"} {
		if _, ok := body[key]; !ok {
			t.Errorf("expected key %s in config", key)
		}
	}
	if list, ok := body["filters"].([]any); !ok || len(list) != 0 {
		t.Errorf("expected empty filter list, got %#v", body["filters"])
	}
	colors, _ := body["restaurant_colors"].(map[string]any)
	if colors["chipotle"] != "#A81612" || colors["default"] != "#3B82F6" {
		t.Errorf("unexpected colors %v", colors)
	}
	if body["version"] != 1.0 {
		t.Errorf("expected version 1, got %v", body["version"])
	}
}

func TestUpdateSettings(t *testing.T) {
	s := newTestServer(t)

	settings := `{"default_sort": "protein_desc", "items_per_page": 30, "radius_options": [1, 5, 10],
		"default_map_center": [-122.4194, 37.7749], "default_map_zoom": 11}`

	for want := 1; want <= 2; want++ {
		w := s.do(t, http.MethodPut, "/admin/settings", settings)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if got := decode[map[string]any](t, w); got["version"] != float64(want) {
			t.Errorf("expected version %d, got %v", want, got["version"])
		}
	}

	body := decode[map[string]any](t, s.do(t, http.MethodGet, "/config/all", ""))
	app, _ := body["app_settings"].(map[string]any)
	if app["default_sort"] != "protein_desc" || body["version"] != 2.0 {
		t.Errorf("expected saved settings in config, got %v", body)
	}

	assertError(t, s.do(t, http.MethodPut, "/admin/settings", `{"default_sort": "price", "items_per_page": 20}`),
		http.StatusBadRequest, CodeInvalidFilter, "default_sort")
}
