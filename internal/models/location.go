package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location data sources.
const (
	SourceOSM            = "osm"
	SourceUserSubmission = "user_submission"
	SourceManual         = "manual"
)

// RestaurantLocation is a physical store of a restaurant chain.
// ExternalID, when set, is unique across all locations and is the dedup key
// for repeated imports.
type RestaurantLocation struct {
	ID           int64
	RestaurantID int64
	Restaurant   Restaurant
	ExternalID   *int64
	Name         string

	Latitude  decimal.Decimal
	Longitude decimal.Decimal

	Address  string
	City     string
	State    string
	Postcode string
	Country  string

	Phone   string
	Website string

	IsActive    bool
	IsVerified  bool
	DataSource  string
	AmenityType string

	LastVerified *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
