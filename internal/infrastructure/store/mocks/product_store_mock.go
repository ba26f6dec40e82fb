package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/pagination"
)

// MockProductStore is an in-memory implementation of the catalog's product
// store for testing.
type MockProductStore struct {
	mu       sync.RWMutex
	products map[string]*product.Product

	// For tracking calls in tests
	AdjustStockCalls []AdjustStockCall
	SetRatingCalls   []SetRatingCall
	AdjustStockErr   error
	SetRatingErr     error
}

// AdjustStockCall records parameters passed to AdjustStock
type AdjustStockCall struct {
	ProductID string
	Delta     int
}

// SetRatingCall records parameters passed to SetRating
type SetRatingCall struct {
	ProductID string
	Rating    product.Rating
}

// NewMockProductStore creates a new MockProductStore
func NewMockProductStore() *MockProductStore {
	return &MockProductStore{
		products:         make(map[string]*product.Product),
		AdjustStockCalls: make([]AdjustStockCall, 0),
		SetRatingCalls:   make([]SetRatingCall, 0),
	}
}

// Add seeds a product
func (m *MockProductStore) Add(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
}

// GetByID retrieves a product by id
func (m *MockProductStore) GetByID(ctx context.Context, id string) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetBySlug retrieves a product by slug
func (m *MockProductStore) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, product.ErrNotFound
}

// List filters, sorts and paginates the in-memory catalog
func (m *MockProductStore) List(ctx context.Context, f product.Filter, s product.Sort, page pagination.Page) ([]*product.Product, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*product.Product
	for _, p := range m.products {
		if !p.IsActive || !matchesFilter(p, f) {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	sortProducts(matched, s)

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// ListFeatured returns featured active products
func (m *MockProductStore) ListFeatured(ctx context.Context, limit int) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var featured []*product.Product
	for _, p := range m.products {
		if p.IsActive && p.IsFeatured {
			cp := *p
			featured = append(featured, &cp)
		}
	}
	sort.Slice(featured, func(i, j int) bool { return featured[i].SortOrder < featured[j].SortOrder })
	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

// ListRelated returns same-category products excluding the given id
func (m *MockProductStore) ListRelated(ctx context.Context, categoryID, excludeID string, limit int) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var related []*product.Product
	for _, p := range m.products {
		if p.IsActive && p.CategoryID == categoryID && p.ID != excludeID {
			cp := *p
			related = append(related, &cp)
		}
	}
	sort.Slice(related, func(i, j int) bool { return related[i].Rating.Average > related[j].Rating.Average })
	if len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}

// FilterOptions aggregates filter values across active products
func (m *MockProductStore) FilterOptions(ctx context.Context) (*product.FilterOptions, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	opts := &product.FilterOptions{}
	occasions := make(map[string]bool)
	weights := make(map[string]bool)
	dietary := map[string]int{}

	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		for _, o := range p.Occasions {
			occasions[o] = true
		}
		if p.Weight != "" {
			weights[p.Weight] = true
		}
		if opts.MinPrice == 0 || p.Price < opts.MinPrice {
			opts.MinPrice = p.Price
		}
		if p.Price > opts.MaxPrice {
			opts.MaxPrice = p.Price
		}
		if p.Dietary.Vegetarian {
			dietary["vegetarian"]++
		}
		if p.Dietary.Vegan {
			dietary["vegan"]++
		}
		if p.Dietary.GlutenFree {
			dietary["glutenFree"]++
		}
		if p.Dietary.SugarFree {
			dietary["sugarFree"]++
		}
		if p.Dietary.Eggless {
			dietary["eggless"]++
		}
	}
	for o := range occasions {
		opts.Occasions = append(opts.Occasions, o)
	}
	for w := range weights {
		opts.Weights = append(opts.Weights, w)
	}
	sort.Strings(opts.Occasions)
	sort.Strings(opts.Weights)
	for _, key := range []string{"vegetarian", "vegan", "glutenFree", "sugarFree", "eggless"} {
		opts.Dietary = append(opts.Dietary, product.DietaryOption{Key: key, Count: dietary[key]})
	}
	return opts, nil
}

// StatsByCategory aggregates product stats per category id
func (m *MockProductStore) StatsByCategory(ctx context.Context) (map[string]product.CategoryStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]product.CategoryStats)
	sums := make(map[string]int)
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		st := stats[p.CategoryID]
		if st.Count == 0 || p.Price < st.MinPrice {
			st.MinPrice = p.Price
		}
		if p.Price > st.MaxPrice {
			st.MaxPrice = p.Price
		}
		st.Count++
		sums[p.CategoryID] += p.Price
		stats[p.CategoryID] = st
	}
	for id, st := range stats {
		st.AvgPrice = sums[id] / st.Count
		stats[id] = st
	}
	return stats, nil
}

// AdjustStock shifts quantity by delta, clamping at zero
func (m *MockProductStore) AdjustStock(ctx context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AdjustStockCalls = append(m.AdjustStockCalls, AdjustStockCall{ProductID: id, Delta: delta})
	if m.AdjustStockErr != nil {
		return m.AdjustStockErr
	}
	p, ok := m.products[id]
	if !ok {
		return product.ErrNotFound
	}
	p.ApplyStockDelta(delta)
	return nil
}

// SetRating overwrites a product's aggregate rating
func (m *MockProductStore) SetRating(ctx context.Context, id string, r product.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetRatingCalls = append(m.SetRatingCalls, SetRatingCall{ProductID: id, Rating: r})
	if m.SetRatingErr != nil {
		return m.SetRatingErr
	}
	p, ok := m.products[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Rating = r
	return nil
}

func matchesFilter(p *product.Product, f product.Filter) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if len(f.Weights) > 0 && !contains(f.Weights, p.Weight) {
		return false
	}
	if len(f.Occasions) > 0 {
		found := false
		for _, o := range p.Occasions {
			if contains(f.Occasions, o) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, flag := range f.Dietary {
		if !hasDietaryFlag(p, flag) {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func hasDietaryFlag(p *product.Product, flag string) bool {
	switch flag {
	case "vegetarian":
		return p.Dietary.Vegetarian
	case "vegan":
		return p.Dietary.Vegan
	case "glutenFree":
		return p.Dietary.GlutenFree
	case "sugarFree":
		return p.Dietary.SugarFree
	case "eggless":
		return p.Dietary.Eggless
	}
	return false
}

func sortProducts(products []*product.Product, s product.Sort) {
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch s {
		case product.SortName:
			return a.Name < b.Name
		case product.SortPriceLow:
			return a.Price < b.Price
		case product.SortPriceHigh:
			return a.Price > b.Price
		case product.SortRating:
			return a.Rating.Average > b.Rating.Average
		case product.SortNewest:
			return a.CreatedAt.After(b.CreatedAt)
		default:
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
			if a.Rating.Average != b.Rating.Average {
				return a.Rating.Average > b.Rating.Average
			}
			return a.SortOrder < b.SortOrder
		}
	})
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
