package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

// SeedResult reports what SeedConfig installed.
type SeedResult struct {
	Filters         int
	QuickFilters    int
	SortOptions     int
	SettingsCreated bool
	SettingsVersion int
}

// SeedConfig replaces the client filter configuration with the defaults and
// creates the settings singleton when it does not exist yet. Existing
// settings are left untouched.
func (im *Importer) SeedConfig(ctx context.Context) (SeedResult, error) {
	filters, quick, sorts := DefaultFilterConfigs(), DefaultQuickFilters(), DefaultSortOptions()
	if err := im.store.ReplaceClientConfig(ctx, filters, quick, sorts); err != nil {
		return SeedResult{}, fmt.Errorf("replace client config: %w", err)
	}

	res := SeedResult{Filters: len(filters), QuickFilters: len(quick), SortOptions: len(sorts)}

	settings, err := im.store.CreateAppSettings(ctx, models.DefaultAppSettings())
	switch {
	case err == nil:
		res.SettingsCreated = true
	case errors.Is(err, repository.ErrAlreadyExists):
		if settings, err = im.store.GetAppSettings(ctx); err != nil {
			return res, fmt.Errorf("load app settings: %w", err)
		}
	default:
		return res, fmt.Errorf("create app settings: %w", err)
	}
	res.SettingsVersion = settings.Version

	im.log.Info("client config seeded",
		"filters", res.Filters,
		"quick_filters", res.QuickFilters,
		"sort_options", res.SortOptions,
		"settings_created", res.SettingsCreated,
	)
	return res, nil
}

type rangeOption struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   *int   `json:"max"`
}

func bound(v int) *int { return &v }

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// DefaultFilterConfigs returns the calorie and macro range filters.
func DefaultFilterConfigs() []models.FilterConfig {
	grams := func(a, b, c string, x, y, z int) []rangeOption {
		return []rangeOption{
			{"Any", 0, nil},
			{a, 0, bound(x)},
			{b, x, bound(y)},
			{c, y, bound(z)},
			{fmt.Sprintf("Over %dg", z), z, nil},
		}
	}
	return []models.FilterConfig{
		{Name: "calories", Label: "Calories", Unit: "kcal", Order: 1, IsActive: true, Options: mustJSON([]rangeOption{
			{"Any", 0, nil},
			{"Under 300", 0, bound(300)},
			{"300-500", 300, bound(500)},
			{"500-700", 500, bound(700)},
			{"Over 700", 700, nil},
		})},
		{Name: "protein", Label: "Protein", Unit: "g", Order: 2, IsActive: true,
			Options: mustJSON(grams("Under 20g", "20-40g", "40-60g", 20, 40, 60))},
		{Name: "carbs", Label: "Carbs", Unit: "g", Order: 3, IsActive: true,
			Options: mustJSON(grams("Under 20g", "20-40g", "40-60g", 20, 40, 60))},
		{Name: "fat", Label: "Fat", Unit: "g", Order: 4, IsActive: true,
			Options: mustJSON(grams("Under 10g", "10-20g", "20-30g", 10, 20, 30))},
	}
}

type paramRange struct {
	Min int  `json:"min"`
	Max *int `json:"max"`
}

// DefaultQuickFilters returns the preset filter combinations.
func DefaultQuickFilters() []models.QuickFilter {
	return []models.QuickFilter{
		{Name: "high_protein", Label: "High Protein", Icon: "Zap", Description: "High protein dishes (40g+)", Order: 1, IsActive: true,
			FilterParams: mustJSON(map[string]any{"protein": paramRange{40, nil}, "sort": "protein_ratio_desc"})},
		{Name: "low_carb", Label: "Low Carb", Icon: "TrendingDown", Description: "Low carbohydrate options (under 20g)", Order: 2, IsActive: true,
			FilterParams: mustJSON(map[string]any{"carbs": paramRange{0, bound(20)}, "sort": "carbs_asc"})},
		{Name: "balanced", Label: "Balanced", Icon: "Scale", Description: "Balanced nutrition (30-40g protein, under 500 cal)", Order: 3, IsActive: true,
			FilterParams: mustJSON(map[string]any{"protein": paramRange{30, bound(40)}, "calories": paramRange{0, bound(500)}, "sort": "protein_ratio_desc"})},
		{Name: "light", Label: "Light & Lean", Icon: "Feather", Description: "Light meals (under 300 calories)", Order: 4, IsActive: true,
			FilterParams: mustJSON(map[string]any{"calories": paramRange{0, bound(300)}, "sort": "calories_asc"})},
		{Name: "nearby_protein", Label: "Nearby High Protein", Icon: "MapPin", Description: "High protein options near you", Order: 5, IsActive: true,
			RequiresLocation: true,
			FilterParams:     mustJSON(map[string]any{"protein": paramRange{40, nil}, "radius": 10, "sort": "distance_asc"})},
	}
}

// DefaultSortOptions returns the client sort choices in display order.
func DefaultSortOptions() []models.SortOption {
	options := []struct {
		value, label string
		location     bool
	}{
		{"protein_ratio_desc", "Protein Ratio (High to Low)", false},
		{"protein_ratio_asc", "Protein Ratio (Low to High)", false},
		{"protein_desc", "Protein (High to Low)", false},
		{"protein_asc", "Protein (Low to High)", false},
		{"calories_asc", "Calories (Low to High)", false},
		{"calories_desc", "Calories (High to Low)", false},
		{"carbs_asc", "Carbs (Low to High)", false},
		{"carbs_desc", "Carbs (High to Low)", false},
		{"fat_asc", "Fat (Low to High)", false},
		{"fat_desc", "Fat (High to Low)", false},
		{"distance_asc", "Distance (Nearest First)", true},
		{"distance_desc", "Distance (Farthest First)", true},
	}
	sorts := make([]models.SortOption, len(options))
	for i, o := range options {
		sorts[i] = models.SortOption{
			Value:            o.value,
			Label:            o.label,
			RequiresLocation: o.location,
			IsActive:         true,
			Order:            i + 1,
		}
	}
	return sorts
}
