package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/pagination"
)

// MockOrderStore is an in-memory implementation of the order store for
// testing.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order

	// For tracking calls in tests
	CreateCalls    []string
	CreateErr      error
	CreateCallback func(ctx context.Context, o *order.Order) error
	UpdateErr      error
}

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders:      make(map[string]*order.Order),
		CreateCalls: make([]string, 0),
	}
}

// Create stores an order, rejecting duplicate order numbers
func (m *MockOrderStore) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, o.OrderNumber)

	if m.CreateCallback != nil {
		return m.CreateCallback(ctx, o)
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.orders {
		if existing.OrderNumber == o.OrderNumber {
			return order.ErrDuplicateNumber
		}
	}
	cp := cloneOrder(o)
	m.orders[o.ID] = cp
	return nil
}

// GetByID retrieves an order by id
func (m *MockOrderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

// ListByUser returns the user's orders, newest first
func (m *MockOrderStore) ListByUser(ctx context.Context, userID string, status order.Status, page pagination.Page) ([]*order.Order, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*order.Order
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	return paginateOrders(matched, page)
}

// ListAll returns every order matching the admin filter, newest first
func (m *MockOrderStore) ListAll(ctx context.Context, filter order.AdminFilter, page pagination.Page) ([]*order.Order, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*order.Order
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.StartDate != nil && o.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && o.CreatedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	return paginateOrders(matched, page)
}

// Update rewrites a stored order
func (m *MockOrderStore) Update(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func paginateOrders(orders []*order.Order, page pagination.Page) ([]*order.Order, int, error) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	total := len(orders)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return orders[start:end], total, nil
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	cp.Timeline = make(order.Timeline, len(o.Timeline))
	for k, v := range o.Timeline {
		cp.Timeline[k] = v
	}
	if o.Rating != nil {
		r := *o.Rating
		cp.Rating = &r
	}
	return &cp
}
