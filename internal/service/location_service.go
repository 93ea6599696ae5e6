package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/geo"
	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

// LocationResult is a location with its distance from the query center.
// DistanceMiles is nil unless the query carried a center point.
type LocationResult struct {
	Location      models.RestaurantLocation
	DistanceMiles *float64
}

// LocationPage is the head of a filtered location list. Center and
// RadiusMiles are set only in distance mode.
type LocationPage struct {
	Items       []LocationResult
	Total       int
	Limit       int
	Center      *geo.Point
	RadiusMiles *float64
}

// LocationService runs location searches over active locations.
type LocationService struct {
	repo repository.LocationRepository
}

// NewLocationService creates a new location service
func NewLocationService(repo repository.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// ListLocations applies the restaurant, bounding box and radius filters,
// orders the result and truncates it to the query limit.
//
// With a center point every result carries its distance and the list is
// ordered nearest first. The radius cut only applies when no bounding box
// was given; a bounding box alone decides membership.
func (s *LocationService) ListLocations(ctx context.Context, q filters.LocationQuery) (*LocationPage, error) {
	locations, err := s.repo.ListActiveLocations(ctx, q.Restaurants)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	results := make([]LocationResult, 0, len(locations))
	for _, loc := range locations {
		if !loc.IsActive {
			continue
		}
		if len(q.Restaurants) > 0 && !slices.Contains(q.Restaurants, loc.Restaurant.Slug) {
			continue
		}
		point := locationPoint(loc)
		if q.BBox != nil && !q.BBox.Contains(point) {
			continue
		}

		result := LocationResult{Location: loc}
		if q.DistanceMode() {
			d := geo.DistanceMiles(*q.Center, point)
			if q.BBox == nil && d > q.RadiusMiles {
				continue
			}
			result.DistanceMiles = &d
		}
		results = append(results, result)
	}

	if q.DistanceMode() {
		slices.SortStableFunc(results, func(a, b LocationResult) int {
			if c := cmp.Compare(*a.DistanceMiles, *b.DistanceMiles); c != 0 {
				return c
			}
			return cmp.Compare(a.Location.ID, b.Location.ID)
		})
	} else {
		slices.SortStableFunc(results, func(a, b LocationResult) int {
			if c := cmp.Compare(a.Location.Restaurant.Name, b.Location.Restaurant.Name); c != 0 {
				return c
			}
			if c := cmp.Compare(a.Location.City, b.Location.City); c != 0 {
				return c
			}
			return cmp.Compare(a.Location.ID, b.Location.ID)
		})
	}

	page := &LocationPage{Total: len(results), Limit: q.Limit}
	page.Items = results[:min(q.Limit, len(results))]
	if q.DistanceMode() {
		center := *q.Center
		radius := q.RadiusMiles
		page.Center = &center
		page.RadiusMiles = &radius
	}
	return page, nil
}

// GetLocation returns an active location.
func (s *LocationService) GetLocation(ctx context.Context, id int64) (*models.RestaurantLocation, error) {
	loc, err := s.repo.GetActiveLocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get location %d: %w", id, err)
	}
	return loc, nil
}

func locationPoint(loc models.RestaurantLocation) geo.Point {
	return geo.Point{Lat: loc.Latitude.InexactFloat64(), Lng: loc.Longitude.InexactFloat64()}
}
