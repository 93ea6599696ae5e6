package filters

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/graze-api/internal/geo"
)

// Location list bounds.
const (
	DefaultLocationLimit = 100
	MaxLocationLimit     = 100
	DefaultRadiusMiles   = 25.0
)

// coordinateField groups lat, lng and radius errors under one key.
// Clients depend on this exact field name.
const coordinateField = "lat/lng"

// LocationQuery is a validated location list request.
type LocationQuery struct {
	Restaurants []string
	BBox        *geo.BoundingBox

	// Center is set only when both lat and lng were supplied.
	Center      *geo.Point
	RadiusMiles float64

	Limit int
}

// DistanceMode reports whether distances are computed for this query.
func (q LocationQuery) DistanceMode() bool {
	return q.Center != nil
}

// ParseLocationQuery validates the location list parameters. Unlike dish
// pagination, an unparseable limit silently falls back to the default.
func ParseLocationQuery(values url.Values) (LocationQuery, error) {
	q := LocationQuery{
		Restaurants: ParseList(values.Get("restaurants")),
		RadiusMiles: DefaultRadiusMiles,
		Limit:       parseLocationLimit(values.Get("limit")),
	}

	var err error
	if q.BBox, err = ParseBBox(values.Get("bbox")); err != nil {
		return LocationQuery{}, err
	}

	lat, err := parseCoordinate(values.Get("lat"), coordinateLimit(false))
	if err != nil {
		return LocationQuery{}, err
	}
	lng, err := parseCoordinate(values.Get("lng"), coordinateLimit(true))
	if err != nil {
		return LocationQuery{}, err
	}
	radius, err := parseRadius(values.Get("radius"))
	if err != nil {
		return LocationQuery{}, err
	}

	if lat != nil && lng != nil {
		q.Center = &geo.Point{Lat: *lat, Lng: *lng}
	}
	if radius != nil {
		q.RadiusMiles = *radius
	}

	return q, nil
}

func parseCoordinate(raw string, limit float64) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, ok := parseNumber(raw)
	if !ok {
		return nil, invalid(coordinateField, "lat, lng and radius must be valid numbers")
	}
	v := d.InexactFloat64()
	if v < -limit || v > limit {
		return nil, invalid(coordinateField, "lat must be within ±90 and lng within ±180")
	}
	return &v, nil
}

func parseRadius(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, ok := parseNumber(raw)
	if !ok || d.IsNegative() {
		return nil, invalid(coordinateField, "lat, lng and radius must be valid numbers")
	}
	v := d.InexactFloat64()
	return &v, nil
}

func parseLocationLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 1 {
		return DefaultLocationLimit
	}
	return min(limit, MaxLocationLimit)
}
