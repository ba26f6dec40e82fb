// Package notification turns order events into customer emails.
package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/domain/user"
	"github.com/example/bakery-storefront/internal/email"
)

// Mailer is the email surface the handler needs.
type Mailer interface {
	SendOrderConfirmation(to, orderNumber string, total int, items []email.OrderItem) error
	SendStatusUpdate(to, orderNumber, status string) error
	SendCancellation(to, orderNumber, reason string) error
}

// Handler processes order events and sends the matching notification email.
// Users without an email address on file are skipped.
type Handler struct {
	mailer Mailer
	users  user.Store
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, users user.Store) *Handler {
	return &Handler{
		mailer: mailer,
		users:  users,
	}
}

// HandleEvent processes one event consumed from Kafka.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch event.Type {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(ctx, event)
	case order.EventOrderStatusChanged:
		return h.handleStatusChanged(ctx, event)
	case order.EventOrderCancelled:
		return h.handleCancelled(ctx, event)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, event order.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s, user %s", e.OrderNumber, e.UserID)

	address, ok := h.emailFor(ctx, e.UserID)
	if !ok {
		return nil
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.mailer.SendOrderConfirmation(address, e.OrderNumber, e.Total, items); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", address, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", address, e.OrderNumber)
	return nil
}

func (h *Handler) handleStatusChanged(ctx context.Context, event order.Event) error {
	var e order.OrderStatusChanged
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderStatusChanged event: %v", err)
		return err
	}

	address, ok := h.emailFor(ctx, e.UserID)
	if !ok {
		return nil
	}

	if err := h.mailer.SendStatusUpdate(address, e.OrderNumber, string(e.Status)); err != nil {
		log.Printf("[Notifier] Failed to send status update to %s: %v", address, err)
		return err
	}

	log.Printf("[Notifier] Status update email sent to %s for order %s (%s)", address, e.OrderNumber, e.Status)
	return nil
}

func (h *Handler) handleCancelled(ctx context.Context, event order.Event) error {
	var e order.OrderCancelled
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderCancelled event: %v", err)
		return err
	}

	address, ok := h.emailFor(ctx, e.UserID)
	if !ok {
		return nil
	}

	if err := h.mailer.SendCancellation(address, e.OrderNumber, e.Reason); err != nil {
		log.Printf("[Notifier] Failed to send cancellation to %s: %v", address, err)
		return err
	}

	log.Printf("[Notifier] Cancellation email sent to %s for order %s", address, e.OrderNumber)
	return nil
}

// emailFor resolves a user's email address. Look-up failures and blank
// addresses are logged and skipped, never retried.
func (h *Handler) emailFor(ctx context.Context, userID string) (string, bool) {
	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("[Notifier] Error getting user %s: %v", userID, err)
		return "", false
	}
	if u.Email == "" {
		log.Printf("[Notifier] User %s has no email on file, skipping", userID)
		return "", false
	}
	return u.Email, true
}
