package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/domain/user"
	"github.com/example/bakery-storefront/internal/pagination"
	"github.com/google/uuid"
)

const (
	DefaultPageSize      = 20
	MaxPageSize          = 50
	AdminDefaultPageSize = 50
	AdminMaxPageSize     = 100

	defaultCancelReason = "Cancelled by customer"

	// Attempts at generating a free order number before giving up.
	orderNumberRetries = 3
)

var ErrOutOfStock = errors.New("product is out of stock")

// Store is the persistence surface the order service needs. Orders are never
// deleted.
type Store interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, status Status, page pagination.Page) ([]*Order, int, error)
	ListAll(ctx context.Context, filter AdminFilter, page pagination.Page) ([]*Order, int, error)
	Update(ctx context.Context, o *Order) error
}

// Catalog is the slice of the product store the order service touches.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) error
	SetRating(ctx context.Context, id string, r product.Rating) error
}

// Loyalty adjusts a user's loyalty point balance. Debits floor at zero.
type Loyalty interface {
	AdjustLoyaltyPoints(ctx context.Context, userID string, delta int) error
}

// Publisher emits order events. A nil publisher disables events.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// AdminFilter narrows the administrative order listing.
type AdminFilter struct {
	Status    Status
	StartDate *time.Time
	EndDate   *time.Time
}

// Line is one requested order line.
type Line struct {
	ProductID     string        `json:"productId"`
	Quantity      int           `json:"quantity"`
	Customization Customization `json:"customization"`
}

// DeliveryRequest is the caller's delivery preference.
type DeliveryRequest struct {
	Type                 DeliveryType `json:"type"`
	ScheduledDate        *time.Time   `json:"scheduledDate,omitempty"`
	ScheduledTime        string       `json:"scheduledTime,omitempty"`
	DeliveryInstructions string       `json:"deliveryInstructions,omitempty"`
}

// PlaceRequest is everything needed to create an order.
type PlaceRequest struct {
	Lines           []Line
	DeliveryAddress user.Address
	PaymentMethod   PaymentMethod
	Delivery        *DeliveryRequest
	Notes           string
}

type Service struct {
	store    Store
	catalog  Catalog
	loyalty  Loyalty
	producer Publisher
}

func NewService(store Store, catalog Catalog, loyalty Loyalty, producer Publisher) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		loyalty:  loyalty,
		producer: producer,
	}
}

// Place creates an order: validates and snapshots every line, decrements
// stock, computes the price breakdown, persists the order and credits loyalty
// points. Stock decrement and order insert are separate writes with no
// transaction spanning them.
func (s *Service) Place(ctx context.Context, userID string, req PlaceRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyOrder
	}

	now := time.Now()
	items := make([]Item, 0, len(req.Lines))
	subtotal := 0

	for _, line := range req.Lines {
		p, err := s.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", product.ErrNotFound, line.ProductID)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: %s", product.ErrUnavailable, p.Name)
		}
		if !p.Availability.InStock && p.Availability.PreOrderDays == 0 {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
		}

		lineSubtotal := p.Price * line.Quantity
		subtotal += lineSubtotal
		items = append(items, Item{
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			Quantity:      line.Quantity,
			Weight:        p.Weight,
			Customization: line.Customization,
			Subtotal:      lineSubtotal,
		})

		// Pre-orders do not hold stock, everything else does.
		if p.Availability.InStock && p.Availability.Quantity > 0 {
			if err := s.catalog.AdjustStock(ctx, p.ID, -line.Quantity); err != nil {
				return nil, err
			}
		}
	}

	summary := NewSummary(subtotal)
	earned := LoyaltyPoints(summary.Total)

	delivery := DeliveryDetails{Type: DeliveryStandard}
	if req.Delivery != nil {
		delivery.Type = req.Delivery.Type
		if delivery.Type == "" {
			delivery.Type = DeliveryStandard
		}
		delivery.ScheduledDate = req.Delivery.ScheduledDate
		delivery.ScheduledTime = req.Delivery.ScheduledTime
		delivery.DeliveryInstructions = req.Delivery.DeliveryInstructions
	}
	delivery.EstimatedDelivery = EstimateDelivery(now, delivery.Type, delivery.ScheduledDate)

	o := &Order{
		ID:                  uuid.New().String(),
		OrderNumber:         NewOrderNumber(now),
		UserID:              userID,
		Items:               items,
		DeliveryAddress:     req.DeliveryAddress,
		Summary:             summary,
		Status:              StatusPending,
		PaymentStatus:       PaymentPending,
		PaymentMethod:       req.PaymentMethod,
		DeliveryDetails:     delivery,
		Timeline:            Timeline{StatusPending: now},
		Notes:               req.Notes,
		LoyaltyPointsEarned: earned,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.createWithRetry(ctx, o); err != nil {
		return nil, err
	}

	if err := s.loyalty.AdjustLoyaltyPoints(ctx, userID, earned); err != nil {
		log.Printf("[Order] Failed to credit %d loyalty points to user %s: %v", earned, userID, err)
	}

	s.publish(ctx, o.ID, EventOrderPlaced, OrderPlaced{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       o.Items,
		Total:       o.Summary.Total,
		PlacedAt:    now,
	})

	return o, nil
}

// createWithRetry regenerates the order number when the unique index rejects
// it. Collisions are rare but the number carries randomness, so retrying is
// enough.
func (s *Service) createWithRetry(ctx context.Context, o *Order) error {
	var err error
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		err = s.store.Create(ctx, o)
		if !errors.Is(err, ErrDuplicateNumber) {
			return err
		}
		o.OrderNumber = NewOrderNumber(time.Now())
	}
	return err
}

// Get returns the order only when it belongs to the given user. Orders of
// other users are indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, orderID, userID string) (*Order, error) {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListForUser returns one page of the user's orders, optionally filtered by
// status, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, status Status, page pagination.Page) ([]*Order, pagination.Pagination, error) {
	page = page.Normalize(DefaultPageSize, MaxPageSize)
	orders, total, err := s.store.ListByUser(ctx, userID, status, page)
	if err != nil {
		return nil, pagination.Pagination{}, err
	}
	return orders, pagination.New(page, total), nil
}

// ListAll is the administrative listing across every user.
func (s *Service) ListAll(ctx context.Context, filter AdminFilter, page pagination.Page) ([]*Order, pagination.Pagination, error) {
	page = page.Normalize(AdminDefaultPageSize, AdminMaxPageSize)
	orders, total, err := s.store.ListAll(ctx, filter, page)
	if err != nil {
		return nil, pagination.Pagination{}, err
	}
	return orders, pagination.New(page, total), nil
}

// Cancel lets the owning user cancel an order that the kitchen has not
// started on. Stock is restored per line and earned loyalty points are
// debited, floored at zero.
func (s *Service) Cancel(ctx context.Context, orderID, userID, reason string) (*Order, error) {
	o, err := s.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !o.Cancellable() {
		return nil, ErrNotCancellable
	}

	if reason == "" {
		reason = defaultCancelReason
	}
	now := time.Now()
	o.ApplyStatus(StatusCancelled, now)
	o.CancellationReason = reason

	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		if err := s.catalog.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("[Order] Failed to restore stock for product %s: %v", item.ProductID, err)
		}
	}

	if o.LoyaltyPointsEarned > 0 {
		if err := s.loyalty.AdjustLoyaltyPoints(ctx, userID, -o.LoyaltyPointsEarned); err != nil {
			log.Printf("[Order] Failed to debit loyalty points from user %s: %v", userID, err)
		}
	}

	s.publish(ctx, o.ID, EventOrderCancelled, OrderCancelled{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Reason:      reason,
		CancelledAt: now,
	})

	return o, nil
}

// Rate records the customer's one-time review of a delivered order and folds
// the overall score into each purchased product's running rating.
func (s *Service) Rate(ctx context.Context, orderID, userID string, rating Rating) (*Order, error) {
	o, err := s.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusDelivered {
		return nil, ErrNotDelivered
	}
	if o.Rating != nil {
		return nil, ErrAlreadyRated
	}

	rating.RatedAt = time.Now()
	o.Rating = &rating
	o.UpdatedAt = rating.RatedAt

	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		p, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			log.Printf("[Order] Skipping rating update for product %s: %v", item.ProductID, err)
			continue
		}
		if err := s.catalog.SetRating(ctx, p.ID, p.Rating.AddRating(rating.Overall)); err != nil {
			log.Printf("[Order] Failed to update rating for product %s: %v", p.ID, err)
		}
	}

	return o, nil
}

// UpdateStatus is the administrative transition: any status, no guard.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status, notes string) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o.ApplyStatus(status, now)
	if notes != "" {
		o.Notes = notes
	}

	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, o.ID, EventOrderStatusChanged, OrderStatusChanged{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      status,
		ChangedAt:   now,
	})

	return o, nil
}

// publish emits an event, logging and swallowing failures: events drive
// notifications only and must never fail the request.
func (s *Service) publish(ctx context.Context, orderID, eventType string, data any) {
	if s.producer == nil {
		return
	}
	event, err := newEvent(eventType, orderID, data)
	if err != nil {
		log.Printf("[Order] Failed to encode %s event for order %s: %v", eventType, orderID, err)
		return
	}
	if err := s.producer.Publish(ctx, orderID, event); err != nil {
		log.Printf("[Order] Failed to publish %s event for order %s: %v", eventType, orderID, err)
	}
}
