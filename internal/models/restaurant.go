package models

import "time"

// Restaurant is a restaurant chain.
// ItemCount and LocationCount are denormalized caches recomputed after bulk
// writes; they are never read back as a source of truth.
type Restaurant struct {
	ID                 int64
	Name               string
	Slug               string
	WebsiteURL         string
	LogoURL            string
	IconURL            string
	BrandColor         string
	NutritionSourceURL string
	ItemCount          int
	LocationCount      int
	LastUpdated        *time.Time
	CreatedAt          time.Time
}

// DefaultBrandColor is used for map markers when a restaurant has no color set.
const DefaultBrandColor = "#3B82F6"
