package category

import (
	"context"
	"errors"
	"time"

	"github.com/example/bakery-storefront/internal/domain/product"
)

var ErrNotFound = errors.New("category not found")

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	IsActive    bool      `json:"isActive"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WithStats is a category enriched with catalog aggregates.
type WithStats struct {
	Category
	ProductCount int `json:"productCount"`
	PriceRange   struct {
		Min int `json:"min"`
		Max int `json:"max"`
		Avg int `json:"avg"`
	} `json:"priceRange"`
}

// Store is the persistence surface the category service needs.
type Store interface {
	ListActive(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
}

// Service answers category queries, joining in per-category product stats.
type Service struct {
	store    Store
	products product.Store
}

func NewService(store Store, products product.Store) *Service {
	return &Service{store: store, products: products}
}

// List returns active categories ordered by sort order, each with its product
// count and price range.
func (s *Service) List(ctx context.Context) ([]*WithStats, error) {
	categories, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.products.StatsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*WithStats, 0, len(categories))
	for _, c := range categories {
		ws := &WithStats{Category: *c}
		if st, ok := stats[c.ID]; ok {
			ws.ProductCount = st.Count
			ws.PriceRange.Min = st.MinPrice
			ws.PriceRange.Max = st.MaxPrice
			ws.PriceRange.Avg = st.AvgPrice
		}
		out = append(out, ws)
	}
	return out, nil
}

// GetBySlug resolves a category by its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return s.store.GetBySlug(ctx, slug)
}
