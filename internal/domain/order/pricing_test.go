package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================
// Summary Tests
// ============================================

func TestNewSummary_FreeDeliveryAboveThreshold(t *testing.T) {
	// Two items at 500 clear the free-delivery threshold.
	s := NewSummary(1000)

	assert.Equal(t, 1000, s.Subtotal)
	assert.Equal(t, 0, s.DeliveryFee)
	assert.Equal(t, 50, s.Tax)
	assert.Equal(t, 0, s.Discount)
	assert.Equal(t, 1050, s.Total)
}

func TestNewSummary_FlatFeeBelowThreshold(t *testing.T) {
	s := NewSummary(400)

	assert.Equal(t, 400, s.Subtotal)
	assert.Equal(t, 49, s.DeliveryFee)
	assert.Equal(t, 20, s.Tax)
	assert.Equal(t, 469, s.Total)
}

func TestDeliveryFee_Boundary(t *testing.T) {
	assert.Equal(t, 49, DeliveryFee(998))
	assert.Equal(t, 0, DeliveryFee(999))
	assert.Equal(t, 0, DeliveryFee(1000))
}

func TestTax_RoundsToNearestUnit(t *testing.T) {
	assert.Equal(t, 0, Tax(0))
	assert.Equal(t, 1, Tax(10))   // 0.5 rounds up
	assert.Equal(t, 1, Tax(29))   // 1.45 rounds down
	assert.Equal(t, 2, Tax(30))   // 1.5 rounds up
	assert.Equal(t, 50, Tax(999)) // 49.95 rounds up
}

func TestLoyaltyPoints(t *testing.T) {
	assert.Equal(t, 0, LoyaltyPoints(99))
	assert.Equal(t, 1, LoyaltyPoints(100))
	assert.Equal(t, 4, LoyaltyPoints(469))
	assert.Equal(t, 10, LoyaltyPoints(1050))
}

// ============================================
// Delivery Estimate Tests
// ============================================

func TestEstimateDelivery_Express(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	got := EstimateDelivery(now, DeliveryExpress, nil)

	assert.Equal(t, now.Add(2*time.Hour), got)
}

func TestEstimateDelivery_Scheduled(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	scheduled := time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC)

	got := EstimateDelivery(now, DeliveryScheduled, &scheduled)

	assert.Equal(t, scheduled, got)
}

func TestEstimateDelivery_ScheduledWithoutDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	// No date means falling back to the standard next-day promise.
	got := EstimateDelivery(now, DeliveryScheduled, nil)

	assert.Equal(t, time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC), got)
}

func TestEstimateDelivery_StandardNextDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 22, 45, 0, 0, time.UTC)

	got := EstimateDelivery(now, DeliveryStandard, nil)

	assert.Equal(t, time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC), got)
}
