package mocks

import (
	"context"
	"sync"

	"github.com/example/bakery-storefront/internal/domain/user"
)

// MockUserStore is an in-memory implementation of the user store for testing.
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*user.User

	// For tracking calls in tests
	AdjustLoyaltyCalls []AdjustLoyaltyCall
	AdjustLoyaltyErr   error
	CreateErr          error
	GetBySubjectErr    error
}

// AdjustLoyaltyCall records parameters passed to AdjustLoyaltyPoints
type AdjustLoyaltyCall struct {
	UserID string
	Delta  int
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:              make(map[string]*user.User),
		AdjustLoyaltyCalls: make([]AdjustLoyaltyCall, 0),
	}
}

// Add seeds a user
func (m *MockUserStore) Add(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

// GetByID retrieves a user by internal id
func (m *MockUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// GetBySubject retrieves a user by identity provider subject
func (m *MockUserStore) GetBySubject(ctx context.Context, subjectID string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetBySubjectErr != nil {
		return nil, m.GetBySubjectErr
	}
	for _, u := range m.users {
		if u.SubjectID == subjectID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

// Create inserts a user, rejecting duplicate phone numbers
func (m *MockUserStore) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.users {
		if u.Phone != "" && existing.Phone == u.Phone {
			return user.ErrPhoneTaken
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// Update rewrites a stored user
func (m *MockUserStore) Update(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// AdjustLoyaltyPoints shifts the loyalty balance by delta, never below zero
func (m *MockUserStore) AdjustLoyaltyPoints(ctx context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AdjustLoyaltyCalls = append(m.AdjustLoyaltyCalls, AdjustLoyaltyCall{UserID: id, Delta: delta})
	if m.AdjustLoyaltyErr != nil {
		return m.AdjustLoyaltyErr
	}
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.LoyaltyPoints += delta
	if u.LoyaltyPoints < 0 {
		u.LoyaltyPoints = 0
	}
	return nil
}

// LoyaltyPoints reads a user's balance directly for assertions
func (m *MockUserStore) LoyaltyPoints(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u.LoyaltyPoints
	}
	return 0
}
