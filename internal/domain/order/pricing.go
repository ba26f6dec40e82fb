package order

import (
	"math"
	"time"
)

// Pricing constants, in whole currency units.
const (
	freeDeliveryThreshold = 999
	flatDeliveryFee       = 49
	taxRate               = 0.05
	loyaltyPointUnit      = 100 // 1 point per 100 units of order total
)

// Hour of day standard deliveries are promised for, next calendar day.
const standardDeliveryHour = 18

// DeliveryFee is zero once the subtotal clears the free-delivery threshold,
// else a flat fee.
func DeliveryFee(subtotal int) int {
	if subtotal >= freeDeliveryThreshold {
		return 0
	}
	return flatDeliveryFee
}

// Tax is a fixed percentage of the subtotal, rounded to the nearest unit.
func Tax(subtotal int) int {
	return int(math.Round(float64(subtotal) * taxRate))
}

// LoyaltyPoints earned for an order total.
func LoyaltyPoints(total int) int {
	return total / loyaltyPointUnit
}

// NewSummary computes the full price breakdown for a subtotal. Discounts are
// not applied at creation time.
func NewSummary(subtotal int) Summary {
	fee := DeliveryFee(subtotal)
	tax := Tax(subtotal)
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Discount:    0,
		Total:       subtotal + fee + tax,
	}
}

// EstimateDelivery picks the promised delivery time: two hours out for
// express, the caller's date for scheduled, otherwise next day at the
// standard delivery hour.
func EstimateDelivery(now time.Time, deliveryType DeliveryType, scheduledDate *time.Time) time.Time {
	switch {
	case deliveryType == DeliveryExpress:
		return now.Add(2 * time.Hour)
	case deliveryType == DeliveryScheduled && scheduledDate != nil:
		return *scheduledDate
	default:
		next := now.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), standardDeliveryHour, 0, 0, 0, next.Location())
	}
}
