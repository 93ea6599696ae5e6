package filters

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Dish sort options.
const (
	SortProteinDesc      = "protein_desc"
	SortProteinAsc       = "protein_asc"
	SortCaloriesAsc      = "calories_asc"
	SortCaloriesDesc     = "calories_desc"
	SortProteinRatioDesc = "protein_ratio_desc"
	SortCarbsAsc         = "carbs_asc"
	SortFatDesc          = "fat_desc"
	SortFatAsc           = "fat_asc"
	SortAlphaAsc         = "alpha_asc"
	SortRelevance        = "relevance"
)

// DefaultDishSort is applied when no sort is requested.
const DefaultDishSort = SortProteinRatioDesc

// Dish pagination bounds.
const (
	DefaultDishLimit = 20
	MaxDishLimit     = 100
)

var dishSorts = map[string]bool{
	SortProteinDesc:      true,
	SortProteinAsc:       true,
	SortCaloriesAsc:      true,
	SortCaloriesDesc:     true,
	SortProteinRatioDesc: true,
	SortCarbsAsc:         true,
	SortFatDesc:          true,
	SortFatAsc:           true,
	SortAlphaAsc:         true,
	SortRelevance:        true,
}

// ValidDishSort reports whether sort is a known dish sort option.
func ValidDishSort(sort string) bool {
	return dishSorts[sort]
}

// DishQuery is a fully validated dish list request. Nil bounds are unbounded.
type DishQuery struct {
	Search string

	CaloriesMin *int
	CaloriesMax *int
	ProteinMin  *decimal.Decimal
	ProteinMax  *decimal.Decimal
	CarbsMax    *decimal.Decimal
	FatMin      *decimal.Decimal
	FatMax      *decimal.Decimal

	Categories  []string
	Restaurants []string

	// Sort is the effective sort, after the relevance substitution.
	Sort string

	Limit  int
	Offset int
}

// ParseDishQuery validates every dish list parameter. The first invalid
// parameter aborts parsing, so no partially applied query is ever returned.
func ParseDishQuery(values url.Values) (DishQuery, error) {
	q := DishQuery{
		Search:      strings.TrimSpace(values.Get("search")),
		Categories:  ParseList(values.Get("category")),
		Restaurants: ParseList(values.Get("restaurants")),
	}

	var err error
	for _, f := range []struct {
		name string
		dst  **int
	}{
		{"calories_min", &q.CaloriesMin},
		{"calories_max", &q.CaloriesMax},
	} {
		if *f.dst, err = ParseInt(f.name, values.Get(f.name)); err != nil {
			return DishQuery{}, err
		}
	}

	for _, f := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"protein_min", &q.ProteinMin},
		{"protein_max", &q.ProteinMax},
		{"carbs_max", &q.CarbsMax},
		{"fat_min", &q.FatMin},
		{"fat_max", &q.FatMax},
	} {
		if *f.dst, err = ParseDecimal(f.name, values.Get(f.name)); err != nil {
			return DishQuery{}, err
		}
	}

	if q.Sort, err = resolveDishSort(values.Get("sort"), q.Search); err != nil {
		return DishQuery{}, err
	}

	if q.Limit, q.Offset, err = parseDishPage(values); err != nil {
		return DishQuery{}, err
	}

	return q, nil
}

// resolveDishSort applies the default, switches the default to relevance
// when a search term is present, then rejects unknown values.
func resolveDishSort(raw, search string) (string, error) {
	sort := strings.TrimSpace(raw)
	if sort == "" {
		sort = DefaultDishSort
	}
	if search != "" && sort == DefaultDishSort {
		sort = SortRelevance
	}
	if !dishSorts[sort] {
		return "", invalid("sort", "Invalid sort option: %s", sort)
	}
	return sort, nil
}

func parseDishPage(values url.Values) (limit, offset int, err error) {
	l, err := ParseInt("limit", values.Get("limit"))
	if err != nil {
		return 0, 0, err
	}
	o, err := ParseInt("offset", values.Get("offset"))
	if err != nil {
		return 0, 0, err
	}

	limit = DefaultDishLimit
	if l != nil && *l >= 1 {
		limit = min(*l, MaxDishLimit)
	}
	if o != nil && *o > 0 {
		offset = *o
	}
	return limit, offset, nil
}

// Applied echoes the parsed filters with their typed values: integers as
// integers, decimals as numbers and lists as lists.
func (q DishQuery) Applied() map[string]any {
	applied := map[string]any{"sort": q.Sort}
	if q.Search != "" {
		applied["search"] = q.Search
	}
	if q.CaloriesMin != nil {
		applied["calories_min"] = *q.CaloriesMin
	}
	if q.CaloriesMax != nil {
		applied["calories_max"] = *q.CaloriesMax
	}
	for name, v := range map[string]*decimal.Decimal{
		"protein_min": q.ProteinMin,
		"protein_max": q.ProteinMax,
		"carbs_max":   q.CarbsMax,
		"fat_min":     q.FatMin,
		"fat_max":     q.FatMax,
	} {
		if v != nil {
			applied[name] = v.InexactFloat64()
		}
	}
	if len(q.Categories) > 0 {
		applied["category"] = q.Categories
	}
	if len(q.Restaurants) > 0 {
		applied["restaurants"] = q.Restaurants
	}
	return applied
}
