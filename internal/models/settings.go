package models

import (
	"encoding/json"
	"time"
)

// AppSettingsKey is the single well-known key the settings record is stored under.
const AppSettingsKey = "app"

// AppSettings is the global frontend configuration. Only one record exists;
// Version increases by one on every update.
type AppSettings struct {
	DefaultSort      string    `json:"default_sort"`
	ItemsPerPage     int       `json:"items_per_page"`
	RadiusOptions    []int     `json:"radius_options"`
	DefaultMapCenter []float64 `json:"default_map_center"`
	DefaultMapZoom   int       `json:"default_map_zoom"`
	Version          int       `json:"version"`
	UpdatedAt        time.Time `json:"-"`
}

// DefaultAppSettings returns the settings used when none have been saved yet.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DefaultSort:      "protein_ratio_desc",
		ItemsPerPage:     20,
		RadiusOptions:    []int{5, 10, 25, 50},
		DefaultMapCenter: []float64{-74.0060, 40.7128},
		DefaultMapZoom:   12,
		Version:          1,
	}
}

// FilterConfig describes one configurable range filter shown by the client.
type FilterConfig struct {
	Name     string          `json:"name"`
	Label    string          `json:"label"`
	Unit     string          `json:"unit"`
	Options  json.RawMessage `json:"options"`
	IsActive bool            `json:"-"`
	Order    int             `json:"-"`
}

// QuickFilter is a preset combination of filter parameters.
type QuickFilter struct {
	Name             string          `json:"name"`
	Label            string          `json:"label"`
	Icon             string          `json:"icon"`
	Description      string          `json:"description"`
	FilterParams     json.RawMessage `json:"filter_params"`
	RequiresLocation bool            `json:"requires_location"`
	IsActive         bool            `json:"-"`
	Order            int             `json:"-"`
}

// SortOption is a client-visible sort choice.
type SortOption struct {
	Value            string `json:"value"`
	Label            string `json:"label"`
	RequiresLocation bool   `json:"requires_location"`
	IsActive         bool   `json:"-"`
	Order            int    `json:"-"`
}
