package filters

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/geo"
)

// Numeric parameters are bounded before any arithmetic touches them; a huge
// exponent would otherwise make decimal comparisons allocate without limit.
const (
	maxExponent = 20
	maxDigits   = 30
)

// parseNumber parses a decimal whose exponent and coefficient stay within
// the bounds above. Such a value always converts to a finite float64.
func parseNumber(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent || d.NumDigits() > maxDigits {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseInt parses an optional integer parameter. An empty value yields nil.
func ParseInt(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalid(field, "%s must be an integer", field)
	}
	return &v, nil
}

// ParseDecimal parses an optional arbitrary-precision decimal parameter.
func ParseDecimal(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, ok := parseNumber(raw)
	if !ok {
		return nil, invalid(field, "%s must be a number", field)
	}
	return &v, nil
}

// ParseList splits a comma separated value, trimming whitespace and dropping
// empty tokens. Order is preserved and duplicates are kept.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

// ParseBBox parses "sw_lat,sw_lng,ne_lat,ne_lng". An empty value yields nil.
func ParseBBox(raw string) (*geo.BoundingBox, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, invalid("bbox", "bbox must have four values: sw_lat,sw_lng,ne_lat,ne_lng")
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		v, ok := parseNumber(part)
		if !ok {
			return nil, invalid("bbox", "bbox must have four values: sw_lat,sw_lng,ne_lat,ne_lng")
		}
		coords[i] = v.InexactFloat64()
	}
	for i, c := range coords {
		if limit := coordinateLimit(i%2 == 1); c < -limit || c > limit {
			return nil, invalid("bbox", "bbox latitudes must be within ±90 and longitudes within ±180")
		}
	}
	return &geo.BoundingBox{
		SouthWest: geo.Point{Lat: coords[0], Lng: coords[1]},
		NorthEast: geo.Point{Lat: coords[2], Lng: coords[3]},
	}, nil
}

// coordinateLimit is the absolute bound for a longitude or a latitude.
func coordinateLimit(longitude bool) float64 {
	if longitude {
		return 180
	}
	return 90
}
