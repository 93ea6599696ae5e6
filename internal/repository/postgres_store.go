package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore implements Store on a pgx connection pool. Numeric columns are
// read as text and parsed into decimals so no precision is lost.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a pool against databaseURL and verifies connectivity.
func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded migrations in file name order. Every migration
// is idempotent, so running it twice is safe.
func (s *PostgresStore) Migrate(ctx context.Context) ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
			return nil, fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return names, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseDecimal(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// ---- restaurants ----

const restaurantColumns = `r.id, r.name, r.slug, r.website_url, r.logo_url, r.icon_url, r.brand_color,
	r.nutrition_source_url, r.item_count, r.location_count, r.last_updated, r.created_at`

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Slug, &r.WebsiteURL, &r.LogoURL, &r.IconURL, &r.BrandColor,
		&r.NutritionSourceURL, &r.ItemCount, &r.LocationCount, &r.LastUpdated, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+restaurantColumns+` FROM restaurants r ORDER BY r.name, r.id`)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, *r)
	}
	return restaurants, rows.Err()
}

func (s *PostgresStore) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	r, err := scanRestaurant(s.pool.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants r WHERE r.slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", slug, err)
	}
	return r, nil
}

func (s *PostgresStore) FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error) {
	r, err := scanRestaurant(s.pool.QueryRow(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants r WHERE LOWER(r.name) = LOWER($1) ORDER BY r.id LIMIT 1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find restaurant %s: %w", name, err)
	}
	return r, nil
}

func (s *PostgresStore) RefreshRestaurantCounts(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	r, err := scanRestaurant(s.pool.QueryRow(ctx, `
		UPDATE restaurants r SET
			item_count = (SELECT COUNT(*) FROM menu_items m WHERE m.restaurant_id = r.id AND m.is_available),
			location_count = (SELECT COUNT(*) FROM restaurant_locations l WHERE l.restaurant_id = r.id AND l.is_active)
		WHERE r.id = $1
		RETURNING `+restaurantColumns, restaurantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("refresh counts for restaurant %d: %w", restaurantID, err)
	}
	return r, nil
}

func (s *PostgresStore) UpsertRestaurant(ctx context.Context, r *models.Restaurant) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO restaurants (name, slug, website_url, logo_url, icon_url, brand_color, nutrition_source_url, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			website_url = EXCLUDED.website_url,
			logo_url = EXCLUDED.logo_url,
			icon_url = EXCLUDED.icon_url,
			brand_color = EXCLUDED.brand_color,
			nutrition_source_url = EXCLUDED.nutrition_source_url,
			last_updated = EXCLUDED.last_updated
		RETURNING id, item_count, location_count, created_at`,
		r.Name, r.Slug, r.WebsiteURL, r.LogoURL, r.IconURL, r.BrandColor, r.NutritionSourceURL, r.LastUpdated,
	).Scan(&r.ID, &r.ItemCount, &r.LocationCount, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert restaurant %s: %w", r.Slug, err)
	}
	return nil
}

// ---- dishes ----

const dishColumns = `m.id, m.restaurant_id, m.name, m.category, m.serving_size, m.calories,
	m.protein::text, m.carbs::text, m.fat::text, m.fiber::text, m.sodium, m.sugar::text, m.saturated_fat::text,
	m.is_vegetarian, m.is_vegan, m.is_gluten_free, m.image_url, m.is_available, m.source_url,
	m.last_verified, m.created_at, m.updated_at, ` + restaurantColumns

func scanDish(row pgx.Row) (*models.MenuItem, error) {
	var (
		item                    models.MenuItem
		protein, carbs, fat     string
		fiber, sugar, saturated *string
		r                       = &item.Restaurant
	)
	err := row.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Category, &item.ServingSize, &item.Calories,
		&protein, &carbs, &fat, &fiber, &item.Sodium, &sugar, &saturated,
		&item.IsVegetarian, &item.IsVegan, &item.IsGlutenFree, &item.ImageURL, &item.IsAvailable, &item.SourceURL,
		&item.LastVerified, &item.CreatedAt, &item.UpdatedAt,
		&r.ID, &r.Name, &r.Slug, &r.WebsiteURL, &r.LogoURL, &r.IconURL, &r.BrandColor,
		&r.NutritionSourceURL, &r.ItemCount, &r.LocationCount, &r.LastUpdated, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if item.Protein, err = parseDecimal(protein); err != nil {
		return nil, err
	}
	if item.Carbs, err = parseDecimal(carbs); err != nil {
		return nil, err
	}
	if item.Fat, err = parseDecimal(fat); err != nil {
		return nil, err
	}
	if item.Fiber, err = parseOptionalDecimal(fiber); err != nil {
		return nil, err
	}
	if item.Sugar, err = parseOptionalDecimal(sugar); err != nil {
		return nil, err
	}
	if item.SaturatedFat, err = parseOptionalDecimal(saturated); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *PostgresStore) ListAvailableDishes(ctx context.Context, restaurantSlugs []string) ([]models.MenuItem, error) {
	return s.SearchAvailableDishes(ctx, filters.DishQuery{Restaurants: restaurantSlugs})
}

// SearchAvailableDishes pushes every dish predicate of q into the WHERE clause.
func (s *PostgresStore) SearchAvailableDishes(ctx context.Context, q filters.DishQuery) ([]models.MenuItem, error) {
	conditions, args := buildDishConditions(q)
	query := `SELECT ` + dishColumns + ` FROM menu_items m JOIN restaurants r ON r.id = m.restaurant_id
		WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY m.id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		item, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// buildDishConditions returns the WHERE conditions and positional args for q.
// Decimal bounds travel as text and are cast to numeric in SQL.
func buildDishConditions(q filters.DishQuery) ([]string, []any) {
	conditions := []string{"m.is_available"}
	var args []any
	add := func(format string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}
	addDecimal := func(column, op string, v *decimal.Decimal) {
		if v != nil {
			add(column+" "+op+" $%d::numeric", v.String())
		}
	}

	if q.Search != "" {
		add(`(m.name ILIKE $%[1]d OR r.name ILIKE $%[1]d)`, "%"+escapeLike(q.Search)+"%")
	}
	if q.CaloriesMin != nil {
		add("m.calories >= $%d", *q.CaloriesMin)
	}
	if q.CaloriesMax != nil {
		add("m.calories <= $%d", *q.CaloriesMax)
	}
	addDecimal("m.protein", ">=", q.ProteinMin)
	addDecimal("m.protein", "<=", q.ProteinMax)
	addDecimal("m.carbs", "<=", q.CarbsMax)
	addDecimal("m.fat", ">=", q.FatMin)
	addDecimal("m.fat", "<=", q.FatMax)
	if len(q.Categories) > 0 {
		add("m.category = ANY($%d)", q.Categories)
	}
	if len(q.Restaurants) > 0 {
		add("r.slug = ANY($%d)", q.Restaurants)
	}
	return conditions, args
}

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *PostgresStore) GetAvailableDish(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := scanDish(s.pool.QueryRow(ctx, `SELECT `+dishColumns+`
		FROM menu_items m JOIN restaurants r ON r.id = m.restaurant_id
		WHERE m.id = $1 AND m.is_available`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dish %d: %w", id, err)
	}
	return item, nil
}

func (s *PostgresStore) MenuItemExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM menu_items WHERE id = $1 AND is_available)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check menu item %d: %w", id, err)
	}
	return exists, nil
}

func (s *PostgresStore) LastDishUpdate(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	if err := s.pool.QueryRow(ctx, `SELECT MAX(updated_at) FROM menu_items`).Scan(&last); err != nil {
		return nil, fmt.Errorf("last dish update: %w", err)
	}
	return last, nil
}

func (s *PostgresStore) UpsertMenuItem(ctx context.Context, item *models.MenuItem) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO menu_items (restaurant_id, name, category, serving_size, calories, protein, carbs, fat,
			fiber, sodium, sugar, saturated_fat, is_vegetarian, is_vegan, is_gluten_free,
			image_url, is_available, source_url, last_verified)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric,
			$9::numeric, $10, $11::numeric, $12::numeric, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (restaurant_id, name) DO UPDATE SET
			category = EXCLUDED.category,
			serving_size = EXCLUDED.serving_size,
			calories = EXCLUDED.calories,
			protein = EXCLUDED.protein,
			carbs = EXCLUDED.carbs,
			fat = EXCLUDED.fat,
			fiber = EXCLUDED.fiber,
			sodium = EXCLUDED.sodium,
			sugar = EXCLUDED.sugar,
			saturated_fat = EXCLUDED.saturated_fat,
			is_vegetarian = EXCLUDED.is_vegetarian,
			is_vegan = EXCLUDED.is_vegan,
			is_gluten_free = EXCLUDED.is_gluten_free,
			image_url = EXCLUDED.image_url,
			is_available = EXCLUDED.is_available,
			source_url = EXCLUDED.source_url,
			last_verified = EXCLUDED.last_verified,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		item.RestaurantID, item.Name, item.Category, item.ServingSize, item.Calories,
		item.Protein.String(), item.Carbs.String(), item.Fat.String(),
		decimalArg(item.Fiber), item.Sodium, decimalArg(item.Sugar), decimalArg(item.SaturatedFat),
		item.IsVegetarian, item.IsVegan, item.IsGlutenFree,
		item.ImageURL, item.IsAvailable, item.SourceURL, item.LastVerified,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if pgCode(err) == pgForeignKeyViolation {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("upsert menu item %s: %w", item.Name, err)
	}
	return nil
}

// ---- locations ----

const locationColumns = `l.id, l.restaurant_id, l.external_id, l.name, l.latitude::text, l.longitude::text,
	l.address, l.city, l.state, l.postcode, l.country, l.phone, l.website,
	l.is_active, l.is_verified, l.data_source, l.amenity_type, l.last_verified, l.created_at, l.updated_at, ` + restaurantColumns

func scanLocation(row pgx.Row) (*models.RestaurantLocation, error) {
	var (
		loc      models.RestaurantLocation
		lat, lng string
		r        = &loc.Restaurant
	)
	err := row.Scan(&loc.ID, &loc.RestaurantID, &loc.ExternalID, &loc.Name, &lat, &lng,
		&loc.Address, &loc.City, &loc.State, &loc.Postcode, &loc.Country, &loc.Phone, &loc.Website,
		&loc.IsActive, &loc.IsVerified, &loc.DataSource, &loc.AmenityType, &loc.LastVerified, &loc.CreatedAt, &loc.UpdatedAt,
		&r.ID, &r.Name, &r.Slug, &r.WebsiteURL, &r.LogoURL, &r.IconURL, &r.BrandColor,
		&r.NutritionSourceURL, &r.ItemCount, &r.LocationCount, &r.LastUpdated, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if loc.Latitude, err = parseDecimal(lat); err != nil {
		return nil, err
	}
	if loc.Longitude, err = parseDecimal(lng); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *PostgresStore) ListActiveLocations(ctx context.Context, restaurantSlugs []string) ([]models.RestaurantLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM restaurant_locations l JOIN restaurants r ON r.id = l.restaurant_id WHERE l.is_active`
	var args []any
	if len(restaurantSlugs) > 0 {
		query += ` AND r.slug = ANY($1)`
		args = append(args, restaurantSlugs)
	}
	query += ` ORDER BY l.id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []models.RestaurantLocation
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, *loc)
	}
	return locations, rows.Err()
}

func (s *PostgresStore) GetActiveLocation(ctx context.Context, id int64) (*models.RestaurantLocation, error) {
	loc, err := scanLocation(s.pool.QueryRow(ctx, `SELECT `+locationColumns+`
		FROM restaurant_locations l JOIN restaurants r ON r.id = l.restaurant_id
		WHERE l.id = $1 AND l.is_active`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location %d: %w", id, err)
	}
	return loc, nil
}

func (s *PostgresStore) LocationExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM restaurant_locations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check location %d: %w", id, err)
	}
	return exists, nil
}

func (s *PostgresStore) ListLocationExternalIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT external_id FROM restaurant_locations WHERE external_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list external ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect external ids: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) LocationExternalIDExists(ctx context.Context, externalID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM restaurant_locations WHERE external_id = $1)`, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check external id %d: %w", externalID, err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateLocation(ctx context.Context, loc *models.RestaurantLocation) error {
	if loc.Country == "" {
		loc.Country = "US"
	}
	if loc.DataSource == "" {
		loc.DataSource = models.SourceOSM
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO restaurant_locations (restaurant_id, external_id, name, latitude, longitude,
			address, city, state, postcode, country, phone, website,
			is_active, is_verified, data_source, amenity_type, last_verified)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`,
		loc.RestaurantID, loc.ExternalID, loc.Name, loc.Latitude.String(), loc.Longitude.String(),
		loc.Address, loc.City, loc.State, loc.Postcode, loc.Country, loc.Phone, loc.Website,
		loc.IsActive, loc.IsVerified, loc.DataSource, loc.AmenityType, loc.LastVerified,
	).Scan(&loc.ID, &loc.CreatedAt, &loc.UpdatedAt)
	switch pgCode(err) {
	case pgUniqueViolation:
		return ErrAlreadyExists
	case pgForeignKeyViolation:
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("create location %s: %w", loc.Name, err)
	}
	return nil
}

// ---- flags ----

func (s *PostgresStore) CreateDataFlag(ctx context.Context, flag *models.DataFlag) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO data_flags (id, menu_item_id, flag_type, user_comment, user_ip)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::inet)
		RETURNING created_at`,
		flag.ID, flag.MenuItemID, flag.FlagType, flag.UserComment, flag.UserIP,
	).Scan(&flag.CreatedAt)
	switch pgCode(err) {
	case pgUniqueViolation:
		return ErrAlreadyExists
	case pgForeignKeyViolation:
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("create data flag: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateLocationFlag(ctx context.Context, flag *models.LocationFlag) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO location_flags (id, location_id, flag_type, user_comment, user_ip)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::inet)
		RETURNING created_at`,
		flag.ID, flag.LocationID, flag.FlagType, flag.UserComment, flag.UserIP,
	).Scan(&flag.CreatedAt)
	switch pgCode(err) {
	case pgUniqueViolation:
		return ErrAlreadyExists
	case pgForeignKeyViolation:
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("create location flag: %w", err)
	}
	return nil
}

func (s *PostgresStore) ResolveDataFlag(ctx context.Context, id string) error {
	return s.resolveFlag(ctx, "data_flags", id)
}

func (s *PostgresStore) ResolveLocationFlag(ctx context.Context, id string) error {
	return s.resolveFlag(ctx, "location_flags", id)
}

func (s *PostgresStore) resolveFlag(ctx context.Context, table, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE `+table+` SET resolved = TRUE WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("resolve flag %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- settings ----

func (s *PostgresStore) GetAppSettings(ctx context.Context) (*models.AppSettings, error) {
	var (
		raw      []byte
		settings models.AppSettings
	)
	err := s.pool.QueryRow(ctx, `SELECT value::text, version, updated_at FROM app_settings WHERE key = $1`, models.AppSettingsKey).
		Scan(&raw, &settings.Version, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	version, updatedAt := settings.Version, settings.UpdatedAt
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	settings.Version, settings.UpdatedAt = version, updatedAt
	return &settings, nil
}

func (s *PostgresStore) CreateAppSettings(ctx context.Context, settings models.AppSettings) (*models.AppSettings, error) {
	settings.Version = 1
	value, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO app_settings (key, value, version) VALUES ($1, $2::jsonb, 1)
		ON CONFLICT (key) DO NOTHING
		RETURNING updated_at`, models.AppSettingsKey, string(value)).Scan(&settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	return &settings, nil
}

func (s *PostgresStore) UpdateAppSettings(ctx context.Context, settings models.AppSettings) (*models.AppSettings, error) {
	value, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		UPDATE app_settings SET value = $2::jsonb, version = version + 1, updated_at = NOW()
		WHERE key = $1
		RETURNING version, updated_at`, models.AppSettingsKey, string(value)).Scan(&settings.Version, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &settings, nil
}

func (s *PostgresStore) ListFilterConfigs(ctx context.Context) ([]models.FilterConfig, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, label, unit, options::text, is_active, sort_order
		FROM filter_configs WHERE is_active ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list filter configs: %w", err)
	}
	defer rows.Close()

	var configs []models.FilterConfig
	for rows.Next() {
		var (
			f       models.FilterConfig
			options string
		)
		if err := rows.Scan(&f.Name, &f.Label, &f.Unit, &options, &f.IsActive, &f.Order); err != nil {
			return nil, fmt.Errorf("scan filter config: %w", err)
		}
		f.Options = []byte(options)
		configs = append(configs, f)
	}
	return configs, rows.Err()
}

func (s *PostgresStore) ListQuickFilters(ctx context.Context) ([]models.QuickFilter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, label, icon, description, filter_params::text, requires_location, is_active, sort_order
		FROM quick_filters WHERE is_active ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list quick filters: %w", err)
	}
	defer rows.Close()

	var quick []models.QuickFilter
	for rows.Next() {
		var (
			q      models.QuickFilter
			params string
		)
		if err := rows.Scan(&q.Name, &q.Label, &q.Icon, &q.Description, &params, &q.RequiresLocation, &q.IsActive, &q.Order); err != nil {
			return nil, fmt.Errorf("scan quick filter: %w", err)
		}
		q.FilterParams = []byte(params)
		quick = append(quick, q)
	}
	return quick, rows.Err()
}

func (s *PostgresStore) ListSortOptions(ctx context.Context) ([]models.SortOption, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT value, label, requires_location, is_active, sort_order
		FROM sort_options WHERE is_active ORDER BY sort_order, value`)
	if err != nil {
		return nil, fmt.Errorf("list sort options: %w", err)
	}
	defer rows.Close()

	var options []models.SortOption
	for rows.Next() {
		var o models.SortOption
		if err := rows.Scan(&o.Value, &o.Label, &o.RequiresLocation, &o.IsActive, &o.Order); err != nil {
			return nil, fmt.Errorf("scan sort option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// ReplaceClientConfig swaps the filter, quick filter and sort option tables
// in a single transaction.
func (s *PostgresStore) ReplaceClientConfig(ctx context.Context, filters []models.FilterConfig, quick []models.QuickFilter, sorts []models.SortOption) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, table := range []string{"filter_configs", "quick_filters", "sort_options"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		batch := &pgx.Batch{}
		for _, f := range filters {
			batch.Queue(`INSERT INTO filter_configs (name, label, unit, options, is_active, sort_order)
				VALUES ($1, $2, $3, $4::jsonb, $5, $6)`,
				f.Name, f.Label, f.Unit, jsonText(f.Options, "[]"), f.IsActive, f.Order)
		}
		for _, q := range quick {
			batch.Queue(`INSERT INTO quick_filters (name, label, icon, description, filter_params, requires_location, is_active, sort_order)
				VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)`,
				q.Name, q.Label, q.Icon, q.Description, jsonText(q.FilterParams, "{}"), q.RequiresLocation, q.IsActive, q.Order)
		}
		for _, o := range sorts {
			batch.Queue(`INSERT INTO sort_options (value, label, requires_location, is_active, sort_order)
				VALUES ($1, $2, $3, $4, $5)`,
				o.Value, o.Label, o.RequiresLocation, o.IsActive, o.Order)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert client config: %w", err)
		}
		return nil
	})
}

func jsonText(raw json.RawMessage, fallback string) string {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return fallback
	}
	return string(raw)
}
