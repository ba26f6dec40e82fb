package product

import (
	"context"

	"github.com/example/bakery-storefront/internal/pagination"
)

// Sort keys accepted by the catalog listing.
type Sort string

const (
	SortName      Sort = "name"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortRating    Sort = "rating"
	SortNewest    Sort = "newest"
	SortPopular   Sort = "popular" // featured first, then rating, then sort order
)

// ValidSort reports whether s is a recognized sort key.
func ValidSort(s Sort) bool {
	switch s {
	case SortName, SortPriceLow, SortPriceHigh, SortRating, SortNewest, SortPopular:
		return true
	}
	return false
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	DefaultFeatured = 10
	MaxFeatured     = 20
	relatedLimit    = 6
)

// Filter narrows a catalog listing. Zero values mean "no constraint".
// Inactive products are always excluded.
type Filter struct {
	CategoryID string
	MinPrice   int
	MaxPrice   int
	Weights    []string
	Occasions  []string
	Dietary    []string // dietary flag names, e.g. "vegan", "glutenFree"
	Search     string   // substring match over name/description/keywords/ingredients
}

// CategoryStats aggregates per-category catalog numbers.
type CategoryStats struct {
	Count    int `json:"count"`
	MinPrice int `json:"minPrice"`
	MaxPrice int `json:"maxPrice"`
	AvgPrice int `json:"avgPrice"`
}

// DietaryOption is one dietary flag with the number of active products set.
type DietaryOption struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// FilterOptions is the set of filter values customers can pick from,
// derived from the active catalog.
type FilterOptions struct {
	Occasions []string        `json:"occasions"`
	Weights   []string        `json:"weights"`
	MinPrice  int             `json:"minPrice"`
	MaxPrice  int             `json:"maxPrice"`
	Dietary   []DietaryOption `json:"dietary"`
}

// Store is the persistence surface the catalog service needs.
type Store interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter Filter, sort Sort, page pagination.Page) ([]*Product, int, error)
	ListFeatured(ctx context.Context, limit int) ([]*Product, error)
	ListRelated(ctx context.Context, categoryID, excludeID string, limit int) ([]*Product, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
	StatsByCategory(ctx context.Context) (map[string]CategoryStats, error)
}

// CatalogService answers read-only catalog queries.
type CatalogService struct {
	store Store
}

func NewCatalogService(store Store) *CatalogService {
	return &CatalogService{store: store}
}

// List returns one page of active products matching the filter.
func (s *CatalogService) List(ctx context.Context, filter Filter, sort Sort, page pagination.Page) ([]*Product, pagination.Pagination, error) {
	if !ValidSort(sort) {
		sort = SortPopular
	}
	page = page.Normalize(DefaultPageSize, MaxPageSize)
	products, total, err := s.store.List(ctx, filter, sort, page)
	if err != nil {
		return nil, pagination.Pagination{}, err
	}
	return products, pagination.New(page, total), nil
}

// Featured returns the featured selection for the storefront landing page.
func (s *CatalogService) Featured(ctx context.Context, limit int) ([]*Product, error) {
	if limit < 1 {
		limit = DefaultFeatured
	}
	if limit > MaxFeatured {
		limit = MaxFeatured
	}
	return s.store.ListFeatured(ctx, limit)
}

// Get returns an active product together with up to six related products
// from the same category.
func (s *CatalogService) Get(ctx context.Context, id string) (*Product, []*Product, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsActive {
		return nil, nil, ErrUnavailable
	}
	related, err := s.store.ListRelated(ctx, p.CategoryID, p.ID, relatedLimit)
	if err != nil {
		return nil, nil, err
	}
	return p, related, nil
}

// GetBySlug is Get keyed by the SEO slug.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*Product, []*Product, error) {
	p, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsActive {
		return nil, nil, ErrNotFound
	}
	related, err := s.store.ListRelated(ctx, p.CategoryID, p.ID, relatedLimit)
	if err != nil {
		return nil, nil, err
	}
	return p, related, nil
}

// FilterOptions returns the selectable filter values for the catalog UI.
func (s *CatalogService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	return s.store.FilterOptions(ctx)
}
