package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a single dish belonging to exactly one restaurant.
// Optional nutrition fields are nil when unknown, which is distinct from zero.
type MenuItem struct {
	ID           int64
	RestaurantID int64
	Restaurant   Restaurant
	Name         string
	Category     string
	ServingSize  string

	Calories int
	Protein  decimal.Decimal
	Carbs    decimal.Decimal
	Fat      decimal.Decimal

	Fiber        *decimal.Decimal
	Sodium       *int
	Sugar        *decimal.Decimal
	SaturatedFat *decimal.Decimal

	IsVegetarian bool
	IsVegan      bool
	IsGlutenFree bool

	ImageURL     string
	IsAvailable  bool
	SourceURL    string
	LastVerified *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
