package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/pagination"
)

const productColumns = `id, name, description, category_id, price, original_price, images,
	rating_average, rating_count, weight, servings, ingredients, allergens, dietary,
	occasions, in_stock, quantity, pre_order_days, customization, slug, keywords,
	is_active, is_featured, sort_order, created_at, updated_at`

// dietary filter keys map to fixed JSONB paths so request input never
// reaches the query text.
var dietaryColumns = map[string]string{
	"vegetarian": "vegetarian",
	"vegan":      "vegan",
	"glutenFree": "glutenFree",
	"sugarFree":  "sugarFree",
	"eggless":    "eggless",
}

// PostgresProductStore persists products in PostgreSQL.
type PostgresProductStore struct {
	db *sql.DB
}

// NewPostgresProductStore creates a product store backed by the given database.
func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

// GetByID retrieves a product by its ID.
func (s *PostgresProductStore) GetByID(ctx context.Context, id string) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetBySlug retrieves a product by its URL slug.
func (s *PostgresProductStore) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, slug))
}

// List returns active products matching the filter, sorted and paginated,
// along with the total match count.
func (s *PostgresProductStore) List(ctx context.Context, f product.Filter, sort product.Sort, page pagination.Page) ([]*product.Product, int, error) {
	where, args := buildProductFilter(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM products ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderClause(sort), len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListFeatured returns up to limit featured active products.
func (s *PostgresProductStore) ListFeatured(ctx context.Context, limit int) ([]*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE is_active = TRUE AND is_featured = TRUE
		ORDER BY sort_order ASC, rating_average DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListRelated returns active products from the same category, excluding the
// product itself.
func (s *PostgresProductStore) ListRelated(ctx context.Context, categoryID, excludeID string, limit int) ([]*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE is_active = TRUE AND category_id = $1 AND id <> $2
		ORDER BY rating_average DESC, sort_order ASC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, categoryID, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FilterOptions aggregates the distinct filter values across active products.
func (s *PostgresProductStore) FilterOptions(ctx context.Context) (*product.FilterOptions, error) {
	opts := &product.FilterOptions{}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT jsonb_array_elements_text(occasions)
		FROM products WHERE is_active = TRUE ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query occasions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var occasion string
		if err := rows.Scan(&occasion); err != nil {
			return nil, err
		}
		opts.Occasions = append(opts.Occasions, occasion)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	weightRows, err := s.db.QueryContext(ctx, `SELECT DISTINCT weight FROM products
		WHERE is_active = TRUE AND weight <> '' ORDER BY weight`)
	if err != nil {
		return nil, fmt.Errorf("failed to query weights: %w", err)
	}
	defer weightRows.Close()
	for weightRows.Next() {
		var weight string
		if err := weightRows.Scan(&weight); err != nil {
			return nil, err
		}
		opts.Weights = append(opts.Weights, weight)
	}
	if err := weightRows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COALESCE(MIN(price), 0), COALESCE(MAX(price), 0)
		FROM products WHERE is_active = TRUE`).Scan(&opts.MinPrice, &opts.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to query price range: %w", err)
	}

	var counts struct{ vegetarian, vegan, glutenFree, sugarFree, eggless int }
	err = s.db.QueryRowContext(ctx, `SELECT
		COUNT(*) FILTER (WHERE (dietary ->> 'vegetarian')::boolean),
		COUNT(*) FILTER (WHERE (dietary ->> 'vegan')::boolean),
		COUNT(*) FILTER (WHERE (dietary ->> 'glutenFree')::boolean),
		COUNT(*) FILTER (WHERE (dietary ->> 'sugarFree')::boolean),
		COUNT(*) FILTER (WHERE (dietary ->> 'eggless')::boolean)
		FROM products WHERE is_active = TRUE`).
		Scan(&counts.vegetarian, &counts.vegan, &counts.glutenFree, &counts.sugarFree, &counts.eggless)
	if err != nil {
		return nil, fmt.Errorf("failed to query dietary counts: %w", err)
	}
	opts.Dietary = []product.DietaryOption{
		{Key: "vegetarian", Count: counts.vegetarian},
		{Key: "vegan", Count: counts.vegan},
		{Key: "glutenFree", Count: counts.glutenFree},
		{Key: "sugarFree", Count: counts.sugarFree},
		{Key: "eggless", Count: counts.eggless},
	}

	return opts, nil
}

// StatsByCategory returns product count and price statistics per category,
// keyed by category ID. Only active products are counted.
func (s *PostgresProductStore) StatsByCategory(ctx context.Context) (map[string]product.CategoryStats, error) {
	query := `SELECT category_id, COUNT(*),
		MIN(price), MAX(price), ROUND(AVG(price))::int
		FROM products WHERE is_active = TRUE
		GROUP BY category_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]product.CategoryStats)
	for rows.Next() {
		var categoryID string
		var st product.CategoryStats
		if err := rows.Scan(&categoryID, &st.Count, &st.MinPrice, &st.MaxPrice, &st.AvgPrice); err != nil {
			return nil, err
		}
		stats[categoryID] = st
	}
	return stats, rows.Err()
}

// AdjustStock shifts a product's quantity by delta, clamping at zero and
// recomputing the in-stock flag.
func (s *PostgresProductStore) AdjustStock(ctx context.Context, id string, delta int) error {
	query := `UPDATE products
		SET quantity = GREATEST(0, quantity + $2),
		    in_stock = GREATEST(0, quantity + $2) > 0,
		    updated_at = $3
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, delta, time.Now())
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return product.ErrNotFound
	}
	return nil
}

// SetRating overwrites a product's aggregate rating.
func (s *PostgresProductStore) SetRating(ctx context.Context, id string, rating product.Rating) error {
	query := `UPDATE products SET rating_average = $2, rating_count = $3, updated_at = $4 WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, rating.Average, rating.Count, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set rating: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Upsert inserts or replaces a product, keyed by slug. Used by seeding.
func (s *PostgresProductStore) Upsert(ctx context.Context, p *product.Product) error {
	images, _ := json.Marshal(p.Images)
	ingredients, _ := json.Marshal(p.Ingredients)
	allergens, _ := json.Marshal(p.Allergens)
	dietary, _ := json.Marshal(p.Dietary)
	occasions, _ := json.Marshal(p.Occasions)
	customization, _ := json.Marshal(p.Customization)
	keywords, _ := json.Marshal(p.Keywords)

	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category_id = EXCLUDED.category_id,
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			images = EXCLUDED.images,
			weight = EXCLUDED.weight,
			servings = EXCLUDED.servings,
			ingredients = EXCLUDED.ingredients,
			allergens = EXCLUDED.allergens,
			dietary = EXCLUDED.dietary,
			occasions = EXCLUDED.occasions,
			in_stock = EXCLUDED.in_stock,
			quantity = EXCLUDED.quantity,
			pre_order_days = EXCLUDED.pre_order_days,
			customization = EXCLUDED.customization,
			keywords = EXCLUDED.keywords,
			is_active = EXCLUDED.is_active,
			is_featured = EXCLUDED.is_featured,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.CategoryID, p.Price, p.OriginalPrice, images,
		p.Rating.Average, p.Rating.Count, p.Weight, p.Servings, ingredients, allergens, dietary,
		occasions, p.Availability.InStock, p.Availability.Quantity, p.Availability.PreOrderDays,
		customization, p.Slug, keywords, p.IsActive, p.IsFeatured, p.SortOrder,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func buildProductFilter(f product.Filter) (string, []any) {
	clauses := []string{"is_active = TRUE"}
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != "" {
		clauses = append(clauses, "category_id = "+next(f.CategoryID))
	}
	if f.MinPrice > 0 {
		clauses = append(clauses, "price >= "+next(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		clauses = append(clauses, "price <= "+next(f.MaxPrice))
	}
	if len(f.Weights) > 0 {
		clauses = append(clauses, "weight = ANY("+next(pq.Array(f.Weights))+")")
	}
	if len(f.Occasions) > 0 {
		clauses = append(clauses, "occasions ?| "+next(pq.Array(f.Occasions)))
	}
	for _, flag := range f.Dietary {
		key, ok := dietaryColumns[flag]
		if !ok {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("(dietary ->> '%s')::boolean = TRUE", key))
	}
	if f.Search != "" {
		pattern := next("%" + f.Search + "%")
		clauses = append(clauses, fmt.Sprintf(
			"(name ILIKE %[1]s OR description ILIKE %[1]s OR keywords::text ILIKE %[1]s OR ingredients::text ILIKE %[1]s)",
			pattern))
	}

	where := "WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

func orderClause(sort product.Sort) string {
	switch sort {
	case product.SortName:
		return "ORDER BY name ASC"
	case product.SortPriceLow:
		return "ORDER BY price ASC"
	case product.SortPriceHigh:
		return "ORDER BY price DESC"
	case product.SortRating:
		return "ORDER BY rating_average DESC, rating_count DESC"
	case product.SortNewest:
		return "ORDER BY created_at DESC"
	default:
		return "ORDER BY is_featured DESC, rating_average DESC, sort_order ASC"
	}
}

func (s *PostgresProductStore) scanOne(row *sql.Row) (*product.Product, error) {
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var images, ingredients, allergens, dietary, occasions, customization, keywords []byte

	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.OriginalPrice, &images,
		&p.Rating.Average, &p.Rating.Count, &p.Weight, &p.Servings, &ingredients, &allergens, &dietary,
		&occasions, &p.Availability.InStock, &p.Availability.Quantity, &p.Availability.PreOrderDays,
		&customization, &p.Slug, &keywords, &p.IsActive, &p.IsFeatured, &p.SortOrder,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(images, &p.Images)
	json.Unmarshal(ingredients, &p.Ingredients)
	json.Unmarshal(allergens, &p.Allergens)
	json.Unmarshal(dietary, &p.Dietary)
	json.Unmarshal(occasions, &p.Occasions)
	json.Unmarshal(customization, &p.Customization)
	json.Unmarshal(keywords, &p.Keywords)

	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]*product.Product, error) {
	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
