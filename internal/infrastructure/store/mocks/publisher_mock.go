package mocks

import (
	"context"
	"sync"
)

// MockPublisher records published events for testing.
type MockPublisher struct {
	mu sync.Mutex

	// For tracking calls in tests
	Published  []PublishedEvent
	PublishErr error
}

// PublishedEvent records parameters passed to Publish
type PublishedEvent struct {
	Key   string
	Event any
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Published: make([]PublishedEvent, 0)}
}

// Publish records the event
func (m *MockPublisher) Publish(ctx context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedEvent{Key: key, Event: event})
	return m.PublishErr
}
