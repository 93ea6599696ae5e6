package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
)

func listDishes(t *testing.T, svc *DishService, query string) *DishPage {
	t.Helper()
	values, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("bad query %q: %v", query, err)
	}
	q, err := filters.ParseDishQuery(values)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", query, err)
	}
	page, err := svc.ListDishes(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return page
}

func dishNames(items []models.MenuItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDishService_ListDishes(t *testing.T) {
	store, _ := newCatalog(t)
	svc := NewDishService(store)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "default sort is protein ratio",
			query: "",
			want:  []string{"Hummus Side", "Steak Salad", "Chicken Burrito Bowl", "Kale Caesar", "Grilled Chicken Tacos", "Harvest Bowl"},
		},
		{
			name:  "search matches item name case insensitive",
			query: "search=CHICKEN&sort=protein_desc",
			want:  []string{"Chicken Burrito Bowl", "Grilled Chicken Tacos"},
		},
		{
			name:  "search matches restaurant name",
			query: "search=sweet&sort=alpha_asc",
			want:  []string{"Harvest Bowl", "Hummus Side", "Kale Caesar"},
		},
		{
			name:  "search switches default sort to relevance",
			query: "search=chicken",
			want:  []string{"Chicken Burrito Bowl", "Grilled Chicken Tacos"},
		},
		{
			name:  "calorie range is inclusive",
			query: "calories_min=400&calories_max=510&sort=calories_asc",
			want:  []string{"Steak Salad", "Kale Caesar", "Grilled Chicken Tacos"},
		},
		{
			name:  "protein and fat bounds",
			query: "protein_min=30&fat_max=22.5&sort=protein_desc",
			want:  []string{"Chicken Burrito Bowl", "Steak Salad", "Grilled Chicken Tacos"},
		},
		{
			name:  "carbs max",
			query: "carbs_max=21&sort=carbs_asc",
			want:  []string{"Hummus Side", "Steak Salad", "Kale Caesar"},
		},
		{
			name:  "category allow list",
			query: "category=bowls,salads&sort=alpha_asc",
			want:  []string{"Chicken Burrito Bowl", "Harvest Bowl", "Kale Caesar", "Steak Salad"},
		},
		{
			name:  "category match is case sensitive",
			query: "category=Bowls",
			want:  []string{},
		},
		{
			name:  "restaurant allow list",
			query: "restaurants=sweetgreen&sort=calories_desc",
			want:  []string{"Harvest Bowl", "Kale Caesar", "Hummus Side"},
		},
		{
			name:  "fat descending",
			query: "sort=fat_desc&restaurants=chipotle",
			want:  []string{"Chicken Burrito Bowl", "Grilled Chicken Tacos", "Steak Salad"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := listDishes(t, svc, tt.query)
			got := dishNames(page.Items)
			if !equalNames(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if page.Total != len(tt.want) {
				t.Errorf("expected total %d, got %d", len(tt.want), page.Total)
			}
		})
	}
}

func TestDishService_UnavailableNeverReturned(t *testing.T) {
	store, _ := newCatalog(t)
	svc := NewDishService(store)

	for _, query := range []string{"", "search=nachos", "category=sides", "calories_min=800", "sort=protein_desc&limit=100"} {
		page := listDishes(t, svc, query)
		for _, item := range page.Items {
			if !item.IsAvailable || item.Name == "Discontinued Chicken Nachos" {
				t.Errorf("query %q returned unavailable item %q", query, item.Name)
			}
		}
	}
}

func TestDishService_Pagination(t *testing.T) {
	store, _ := newCatalog(t)
	svc := NewDishService(store)

	tests := []struct {
		query       string
		wantLen     int
		wantHasMore bool
	}{
		{"limit=2&offset=0", 2, true},
		{"limit=2&offset=4", 2, false},
		{"limit=4&offset=4", 2, false},
		{"limit=2&offset=10", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page := listDishes(t, svc, tt.query)
			if len(page.Items) != tt.wantLen {
				t.Errorf("expected %d items, got %d", tt.wantLen, len(page.Items))
			}
			if page.HasMore() != tt.wantHasMore {
				t.Errorf("expected has_more %v, got %v", tt.wantHasMore, page.HasMore())
			}
			if page.Total != 6 {
				t.Errorf("expected total 6 before pagination, got %d", page.Total)
			}
		})
	}
}

func TestDishPage_HasMore(t *testing.T) {
	tests := []struct {
		total, limit, offset int
		want                 bool
	}{
		{25, 20, 0, true},
		{25, 20, 20, false},
		{20, 20, 0, false},
		{0, 20, 0, false},
	}
	for _, tt := range tests {
		page := DishPage{Total: tt.total, Limit: tt.limit, Offset: tt.offset}
		if got := page.HasMore(); got != tt.want {
			t.Errorf("total=%d limit=%d offset=%d: expected %v, got %v", tt.total, tt.limit, tt.offset, tt.want, got)
		}
	}
}

func TestSortDishes_RelevanceRanksNamePrefixFirst(t *testing.T) {
	items := []models.MenuItem{
		{ID: 1, Name: "Spicy Tacos", Restaurant: models.Restaurant{Name: "Bowl Bros"}},
		{ID: 2, Name: "Grain Bowl"},
		{ID: 3, Name: "Bowl of Chili"},
	}
	SortDishes(items, filters.SortRelevance, "bowl")

	want := []string{"Bowl of Chili", "Grain Bowl", "Spicy Tacos"}
	if got := dishNames(items); !equalNames(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSortDishes_TiesBrokenByID(t *testing.T) {
	items := []models.MenuItem{
		{ID: 3, Name: "c", Calories: 100},
		{ID: 1, Name: "a", Calories: 100},
		{ID: 2, Name: "b", Calories: 100},
	}
	SortDishes(items, filters.SortCaloriesAsc, "")
	for i, want := range []int64{1, 2, 3} {
		if items[i].ID != want {
			t.Errorf("position %d: expected id %d, got %d", i, want, items[i].ID)
		}
	}
}

func TestDishService_GetDish(t *testing.T) {
	store, _ := newCatalog(t)
	svc := NewDishService(store)
	ctx := context.Background()

	items, _ := store.ListAvailableDishes(ctx, nil)
	got, err := svc.GetDish(ctx, items[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Restaurant.Slug == "" {
		t.Error("expected restaurant summary on detail")
	}

	if _, err := svc.GetDish(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
