package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/bakery-storefront/internal/domain/user"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusBaking         Status = "baking"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Statuses is the full status set in forward order, cancelled last.
var Statuses = []Status{
	StatusPending, StatusConfirmed, StatusPreparing, StatusBaking,
	StatusReady, StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

// ValidStatus reports whether s names a known status.
func ValidStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
	PaymentWallet PaymentMethod = "wallet"
)

// ValidPaymentMethod reports whether m is a supported payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCOD, PaymentOnline, PaymentWallet:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryStandard  DeliveryType = "standard"
	DeliveryExpress   DeliveryType = "express"
	DeliveryScheduled DeliveryType = "scheduled"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrNotCancellable  = errors.New("order cannot be cancelled at this stage")
	ErrNotDelivered    = errors.New("can only rate delivered orders")
	ErrAlreadyRated    = errors.New("order already rated")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrDuplicateNumber = errors.New("order number already taken")
)

// Customization is the buyer's per-line choices.
type Customization struct {
	Flavor              string `json:"flavor,omitempty"`
	Size                string `json:"size,omitempty"`
	Decoration          string `json:"decoration,omitempty"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// Item is a denormalized snapshot of the product at purchase time.
type Item struct {
	ProductID     string        `json:"productId"`
	Name          string        `json:"name"`
	Price         int           `json:"price"`
	Quantity      int           `json:"quantity"`
	Weight        string        `json:"weight"`
	Customization Customization `json:"customization"`
	Subtotal      int           `json:"subtotal"`
}

// Summary breaks down the order total.
type Summary struct {
	Subtotal    int `json:"subtotal"`
	DeliveryFee int `json:"deliveryFee"`
	Tax         int `json:"tax"`
	Discount    int `json:"discount"`
	Total       int `json:"total"`
}

// DeliveryDetails carries the requested and estimated delivery schedule.
type DeliveryDetails struct {
	Type                 DeliveryType `json:"type"`
	ScheduledDate        *time.Time   `json:"scheduledDate,omitempty"`
	ScheduledTime        string       `json:"scheduledTime,omitempty"`
	EstimatedDelivery    time.Time    `json:"estimatedDelivery"`
	ActualDelivery       *time.Time   `json:"actualDelivery,omitempty"`
	DeliveryInstructions string       `json:"deliveryInstructions,omitempty"`
}

// Rating holds the customer's one-time review of a delivered order.
type Rating struct {
	Overall  int       `json:"overall"`
	Food     int       `json:"food"`
	Delivery int       `json:"delivery"`
	Comment  string    `json:"comment,omitempty"`
	RatedAt  time.Time `json:"ratedAt"`
}

// Timeline maps each status to the time it was first reached.
type Timeline map[Status]time.Time

type Order struct {
	ID                  string          `json:"id"`
	OrderNumber         string          `json:"orderNumber"`
	UserID              string          `json:"userId"`
	Items               []Item          `json:"items"`
	DeliveryAddress     user.Address    `json:"deliveryAddress"`
	Summary             Summary         `json:"orderSummary"`
	Status              Status          `json:"status"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod"`
	DeliveryDetails     DeliveryDetails `json:"deliveryDetails"`
	Timeline            Timeline        `json:"timeline"`
	Notes               string          `json:"notes,omitempty"`
	CancellationReason  string          `json:"cancellationReason,omitempty"`
	Rating              *Rating         `json:"rating,omitempty"`
	LoyaltyPointsEarned int             `json:"loyaltyPointsEarned"`
	LoyaltyPointsUsed   int             `json:"loyaltyPointsUsed"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Cancellable reports whether the customer may still cancel: only before the
// kitchen starts working on the order.
func (o *Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// ApplyStatus moves the order to the given status and stamps the timeline
// entry if this status was never reached before; re-applying a status never
// overwrites the original timestamp. Reaching delivered also records the
// actual delivery time.
func (o *Order) ApplyStatus(status Status, now time.Time) {
	o.Status = status
	if o.Timeline == nil {
		o.Timeline = Timeline{}
	}
	if _, stamped := o.Timeline[status]; !stamped {
		o.Timeline[status] = now
	}
	if status == StatusDelivered && o.DeliveryDetails.ActualDelivery == nil {
		at := o.Timeline[StatusDelivered]
		o.DeliveryDetails.ActualDelivery = &at
	}
	o.UpdatedAt = now
}

// NewOrderNumber builds the human-readable order reference: a fixed prefix,
// the creation time in base36, and a random suffix. Uniqueness is enforced by
// the database index; callers retry on conflict.
func NewOrderNumber(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:5]
	return strings.ToUpper(fmt.Sprintf("Bake%s%s", ts, suffix))
}
