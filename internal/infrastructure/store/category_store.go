package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/bakery-storefront/internal/domain/category"
)

const categoryColumns = `id, name, slug, description, image, is_active, sort_order, created_at, updated_at`

// PostgresCategoryStore persists categories in PostgreSQL.
type PostgresCategoryStore struct {
	db *sql.DB
}

// NewPostgresCategoryStore creates a category store backed by the given database.
func NewPostgresCategoryStore(db *sql.DB) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

// ListActive returns all active categories in display order.
func (s *PostgresCategoryStore) ListActive(ctx context.Context) ([]*category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE is_active = TRUE
		ORDER BY sort_order ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetBySlug retrieves a category by its URL slug.
func (s *PostgresCategoryStore) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, category.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// Upsert inserts or replaces a category, keyed by slug. Used by seeding.
func (s *PostgresCategoryStore) Upsert(ctx context.Context, c *category.Category) error {
	query := `INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			image = EXCLUDED.image,
			is_active = EXCLUDED.is_active,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.Image, c.IsActive, c.SortOrder,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}

func scanCategory(row rowScanner) (*category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image,
		&c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
