package handlers

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/nutrition"
	"github.com/Lixing-Zhang/graze-api/internal/service"
)

// Macros are stored with one fractional digit and coordinates with seven.
const (
	macroPlaces      = 1
	coordinatePlaces = 7
)

type restaurantSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	LogoURL    string `json:"logo_url"`
	IconURL    string `json:"icon_url"`
	BrandColor string `json:"brand_color"`
	ItemCount  int    `json:"item_count"`
}

type restaurantDetail struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	WebsiteURL         string     `json:"website_url"`
	LogoURL            string     `json:"logo_url"`
	IconURL            string     `json:"icon_url"`
	BrandColor         string     `json:"brand_color"`
	NutritionSourceURL string     `json:"nutrition_source_url"`
	ItemCount          int        `json:"item_count"`
	LocationCount      int        `json:"location_count"`
	LastUpdated        *time.Time `json:"last_updated"`
}

type restaurantWithDishes struct {
	restaurantDetail
	Dishes []dishSummary `json:"dishes"`
}

type dishSummary struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Restaurant       restaurantSummary `json:"restaurant"`
	Category         string            `json:"category"`
	ServingSize      string            `json:"serving_size"`
	Calories         int               `json:"calories"`
	Protein          string            `json:"protein"`
	Carbs            string            `json:"carbs"`
	Fat              string            `json:"fat"`
	ProteinPer100Cal string            `json:"protein_per_100cal"`
	DensityLabel     string            `json:"density_label"`
}

type dishDetail struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Restaurant       restaurantDetail `json:"restaurant"`
	Category         string           `json:"category"`
	ServingSize      string           `json:"serving_size"`
	Calories         int              `json:"calories"`
	Protein          string           `json:"protein"`
	Carbs            string           `json:"carbs"`
	Fat              string           `json:"fat"`
	Fiber            *string          `json:"fiber"`
	Sodium           *int             `json:"sodium"`
	Sugar            *string          `json:"sugar"`
	SaturatedFat     *string          `json:"saturated_fat"`
	ProteinPer100Cal string           `json:"protein_per_100cal"`
	DensityLabel     string           `json:"density_label"`
	IsVegetarian     bool             `json:"is_vegetarian"`
	IsVegan          bool             `json:"is_vegan"`
	IsGlutenFree     bool             `json:"is_gluten_free"`
	SourceURL        string           `json:"source_url"`
	LastVerified     *time.Time       `json:"last_verified"`
}

type locationRestaurant struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	BrandColor string `json:"brand_color"`
	IconURL    string `json:"icon_url"`
}

type locationSummary struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Restaurant    locationRestaurant `json:"restaurant"`
	Latitude      string             `json:"latitude"`
	Longitude     string             `json:"longitude"`
	Address       string             `json:"address"`
	City          string             `json:"city"`
	State         string             `json:"state"`
	Postcode      string             `json:"postcode"`
	DistanceMiles *float64           `json:"distance_miles,omitempty"`
}

type locationDetail struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Restaurant   locationRestaurant `json:"restaurant"`
	Latitude     string             `json:"latitude"`
	Longitude    string             `json:"longitude"`
	Address      string             `json:"address"`
	City         string             `json:"city"`
	State        string             `json:"state"`
	Postcode     string             `json:"postcode"`
	Country      string             `json:"country"`
	Phone        string             `json:"phone"`
	Website      string             `json:"website"`
	IsVerified   bool               `json:"is_verified"`
	DataSource   string             `json:"data_source"`
	AmenityType  string             `json:"amenity_type"`
	LastVerified *time.Time         `json:"last_verified"`
}

type dishMeta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type locationMeta struct {
	Total       int      `json:"total"`
	Limit       int      `json:"limit"`
	CenterLat   *float64 `json:"center_lat,omitempty"`
	CenterLng   *float64 `json:"center_lng,omitempty"`
	RadiusMiles *float64 `json:"radius_miles,omitempty"`
}

type countMeta struct {
	Total int `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newRestaurantSummary(r models.Restaurant) restaurantSummary {
	return restaurantSummary{
		ID:         r.ID,
		Name:       r.Name,
		Slug:       r.Slug,
		LogoURL:    r.LogoURL,
		IconURL:    r.IconURL,
		BrandColor: brandColor(r),
		ItemCount:  r.ItemCount,
	}
}

func newRestaurantDetail(r models.Restaurant) restaurantDetail {
	return restaurantDetail{
		ID:                 r.ID,
		Name:               r.Name,
		Slug:               r.Slug,
		WebsiteURL:         r.WebsiteURL,
		LogoURL:            r.LogoURL,
		IconURL:            r.IconURL,
		BrandColor:         brandColor(r),
		NutritionSourceURL: r.NutritionSourceURL,
		ItemCount:          r.ItemCount,
		LocationCount:      r.LocationCount,
		LastUpdated:        r.LastUpdated,
	}
}

func brandColor(r models.Restaurant) string {
	if r.BrandColor == "" {
		return models.DefaultBrandColor
	}
	return r.BrandColor
}

func newDishSummary(item models.MenuItem) dishSummary {
	metrics := nutrition.Compute(item.Protein, item.Calories)
	return dishSummary{
		ID:               item.ID,
		Name:             item.Name,
		Restaurant:       newRestaurantSummary(item.Restaurant),
		Category:         item.Category,
		ServingSize:      item.ServingSize,
		Calories:         item.Calories,
		Protein:          item.Protein.StringFixed(macroPlaces),
		Carbs:            item.Carbs.StringFixed(macroPlaces),
		Fat:              item.Fat.StringFixed(macroPlaces),
		ProteinPer100Cal: metrics.ProteinPer100Cal.StringFixed(1),
		DensityLabel:     metrics.DensityLabel,
	}
}

func newDishSummaries(items []models.MenuItem) []dishSummary {
	out := make([]dishSummary, len(items))
	for i, item := range items {
		out[i] = newDishSummary(item)
	}
	return out
}

func newDishDetail(item models.MenuItem) dishDetail {
	metrics := nutrition.Compute(item.Protein, item.Calories)
	return dishDetail{
		ID:               item.ID,
		Name:             item.Name,
		Restaurant:       newRestaurantDetail(item.Restaurant),
		Category:         item.Category,
		ServingSize:      item.ServingSize,
		Calories:         item.Calories,
		Protein:          item.Protein.StringFixed(macroPlaces),
		Carbs:            item.Carbs.StringFixed(macroPlaces),
		Fat:              item.Fat.StringFixed(macroPlaces),
		Fiber:            optionalMacro(item.Fiber),
		Sodium:           item.Sodium,
		Sugar:            optionalMacro(item.Sugar),
		SaturatedFat:     optionalMacro(item.SaturatedFat),
		ProteinPer100Cal: metrics.ProteinPer100Cal.StringFixed(1),
		DensityLabel:     metrics.DensityLabel,
		IsVegetarian:     item.IsVegetarian,
		IsVegan:          item.IsVegan,
		IsGlutenFree:     item.IsGlutenFree,
		SourceURL:        item.SourceURL,
		LastVerified:     item.LastVerified,
	}
}

func optionalMacro(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(macroPlaces)
	return &s
}

func newLocationRestaurant(r models.Restaurant) locationRestaurant {
	return locationRestaurant{
		ID:         r.ID,
		Name:       r.Name,
		Slug:       r.Slug,
		BrandColor: brandColor(r),
		IconURL:    r.IconURL,
	}
}

func newLocationSummary(result service.LocationResult) locationSummary {
	loc := result.Location
	out := locationSummary{
		ID:         loc.ID,
		Name:       loc.Name,
		Restaurant: newLocationRestaurant(loc.Restaurant),
		Latitude:   loc.Latitude.StringFixed(coordinatePlaces),
		Longitude:  loc.Longitude.StringFixed(coordinatePlaces),
		Address:    loc.Address,
		City:       loc.City,
		State:      loc.State,
		Postcode:   loc.Postcode,
	}
	if result.DistanceMiles != nil {
		d := roundMiles(*result.DistanceMiles)
		out.DistanceMiles = &d
	}
	return out
}

func newLocationDetail(loc models.RestaurantLocation) locationDetail {
	return locationDetail{
		ID:           loc.ID,
		Name:         loc.Name,
		Restaurant:   newLocationRestaurant(loc.Restaurant),
		Latitude:     loc.Latitude.StringFixed(coordinatePlaces),
		Longitude:    loc.Longitude.StringFixed(coordinatePlaces),
		Address:      loc.Address,
		City:         loc.City,
		State:        loc.State,
		Postcode:     loc.Postcode,
		Country:      loc.Country,
		Phone:        loc.Phone,
		Website:      loc.Website,
		IsVerified:   loc.IsVerified,
		DataSource:   loc.DataSource,
		AmenityType:  loc.AmenityType,
		LastVerified: loc.LastVerified,
	}
}

func roundMiles(d float64) float64 {
	return math.Round(d*100) / 100
}
