package models

import "time"

// DataFlag types.
const (
	DataFlagIncorrect = "incorrect"
	DataFlagOutdated  = "outdated"
	DataFlagMissing   = "missing"
)

// LocationFlag types.
const (
	LocationFlagClosed       = "closed"
	LocationFlagWrongAddress = "wrong_address"
	LocationFlagDuplicate    = "duplicate"
	LocationFlagMissing      = "missing"
)

// DataFlagTypes lists the accepted DataFlag types in display order.
var DataFlagTypes = []string{DataFlagIncorrect, DataFlagOutdated, DataFlagMissing}

// LocationFlagTypes lists the accepted LocationFlag types in display order.
var LocationFlagTypes = []string{LocationFlagClosed, LocationFlagWrongAddress, LocationFlagDuplicate, LocationFlagMissing}

// DataFlag is a user report against a menu item. MenuItemID is nil when the
// report is about an item missing from the catalog.
type DataFlag struct {
	ID          string
	MenuItemID  *int64
	FlagType    string
	UserComment string
	UserIP      string
	Resolved    bool
	CreatedAt   time.Time
}

// LocationFlag is a user report against a restaurant location.
type LocationFlag struct {
	ID          string
	LocationID  int64
	FlagType    string
	UserComment string
	UserIP      string
	Resolved    bool
	CreatedAt   time.Time
}
