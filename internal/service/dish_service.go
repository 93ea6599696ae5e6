package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/nutrition"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

// DishPage is one page of a filtered dish list. Total counts the filtered
// set before pagination.
type DishPage struct {
	Items  []models.MenuItem
	Total  int
	Limit  int
	Offset int
}

// HasMore reports whether another page follows this one.
func (p DishPage) HasMore() bool {
	return p.Offset+p.Limit < p.Total
}

// DishService runs dish list queries over available menu items.
type DishService struct {
	repo repository.DishRepository
}

// NewDishService creates a new dish service
func NewDishService(repo repository.DishRepository) *DishService {
	return &DishService{repo: repo}
}

// ListDishes filters, sorts and paginates available dishes.
func (s *DishService) ListDishes(ctx context.Context, q filters.DishQuery) (*DishPage, error) {
	items, err := s.repo.SearchAvailableDishes(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}

	matched := FilterDishes(items, q)
	SortDishes(matched, q.Sort, q.Search)

	page := &DishPage{Total: len(matched), Limit: q.Limit, Offset: q.Offset}
	if q.Offset < len(matched) {
		end := min(q.Offset+q.Limit, len(matched))
		page.Items = matched[q.Offset:end]
	} else {
		page.Items = []models.MenuItem{}
	}
	return page, nil
}

// GetDish returns an available dish.
func (s *DishService) GetDish(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := s.repo.GetAvailableDish(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get dish %d: %w", id, err)
	}
	return item, nil
}

// FilterDishes keeps the items matching every predicate of q. Unavailable
// items never match.
func FilterDishes(items []models.MenuItem, q filters.DishQuery) []models.MenuItem {
	search := strings.ToLower(q.Search)
	matched := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if !item.IsAvailable {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Restaurant.Name), search) {
			continue
		}
		if !intInRange(item.Calories, q.CaloriesMin, q.CaloriesMax) ||
			!decimalInRange(item.Protein, q.ProteinMin, q.ProteinMax) ||
			!decimalInRange(item.Carbs, nil, q.CarbsMax) ||
			!decimalInRange(item.Fat, q.FatMin, q.FatMax) {
			continue
		}
		if len(q.Categories) > 0 && !slices.Contains(q.Categories, item.Category) {
			continue
		}
		if len(q.Restaurants) > 0 && !slices.Contains(q.Restaurants, item.Restaurant.Slug) {
			continue
		}
		matched = append(matched, item)
	}
	return matched
}

func intInRange(v int, lo, hi *int) bool {
	return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
}

func decimalInRange(v decimal.Decimal, lo, hi *decimal.Decimal) bool {
	return (lo == nil || v.GreaterThanOrEqual(*lo)) && (hi == nil || v.LessThanOrEqual(*hi))
}

// SortDishes orders items in place. Ties fall back to ascending id.
func SortDishes(items []models.MenuItem, sort, search string) {
	var key func(a, b models.MenuItem) int

	switch sort {
	case filters.SortProteinDesc:
		key = func(a, b models.MenuItem) int { return b.Protein.Cmp(a.Protein) }
	case filters.SortProteinAsc:
		key = func(a, b models.MenuItem) int { return a.Protein.Cmp(b.Protein) }
	case filters.SortCaloriesAsc:
		key = func(a, b models.MenuItem) int { return cmp.Compare(a.Calories, b.Calories) }
	case filters.SortCaloriesDesc:
		key = func(a, b models.MenuItem) int { return cmp.Compare(b.Calories, a.Calories) }
	case filters.SortCarbsAsc:
		key = func(a, b models.MenuItem) int { return a.Carbs.Cmp(b.Carbs) }
	case filters.SortFatDesc:
		key = func(a, b models.MenuItem) int { return b.Fat.Cmp(a.Fat) }
	case filters.SortFatAsc:
		key = func(a, b models.MenuItem) int { return a.Fat.Cmp(b.Fat) }
	case filters.SortAlphaAsc:
		key = func(a, b models.MenuItem) int {
			if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c
			}
			return cmp.Compare(a.Name, b.Name)
		}
	case filters.SortRelevance:
		term := strings.ToLower(search)
		key = func(a, b models.MenuItem) int {
			if c := cmp.Compare(relevanceRank(a, term), relevanceRank(b, term)); c != 0 {
				return c
			}
			return b.Protein.Cmp(a.Protein)
		}
	default:
		ratios := make(map[int64]decimal.Decimal, len(items))
		for _, item := range items {
			ratios[item.ID] = nutrition.ProteinRatio(item.Protein, item.Calories)
		}
		key = func(a, b models.MenuItem) int { return ratios[b.ID].Cmp(ratios[a.ID]) }
	}

	slices.SortStableFunc(items, func(a, b models.MenuItem) int {
		if c := key(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// relevanceRank is 0 for a name prefix match, 1 for a name substring match
// and 2 otherwise. An empty term ranks everything equally.
func relevanceRank(item models.MenuItem, term string) int {
	if term == "" {
		return 0
	}
	name := strings.ToLower(item.Name)
	switch {
	case strings.HasPrefix(name, term):
		return 0
	case strings.Contains(name, term):
		return 1
	default:
		return 2
	}
}
