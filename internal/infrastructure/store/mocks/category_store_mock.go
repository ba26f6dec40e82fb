package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/bakery-storefront/internal/domain/category"
)

// MockCategoryStore is an in-memory implementation of the category store for
// testing.
type MockCategoryStore struct {
	mu         sync.RWMutex
	categories map[string]*category.Category
}

// NewMockCategoryStore creates a new MockCategoryStore
func NewMockCategoryStore() *MockCategoryStore {
	return &MockCategoryStore{categories: make(map[string]*category.Category)}
}

// Add seeds a category
func (m *MockCategoryStore) Add(c *category.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.categories[c.ID] = &cp
}

// ListActive returns active categories in display order
func (m *MockCategoryStore) ListActive(ctx context.Context) ([]*category.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []*category.Category
	for _, c := range m.categories {
		if c.IsActive {
			cp := *c
			active = append(active, &cp)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].SortOrder != active[j].SortOrder {
			return active[i].SortOrder < active[j].SortOrder
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

// GetBySlug retrieves a category by slug
func (m *MockCategoryStore) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, category.ErrNotFound
}
