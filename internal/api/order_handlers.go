package api

import (
	"net/http"
	"time"

	"github.com/example/bakery-storefront/internal/api/middleware"
	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/domain/user"
)

type placeOrderRequest struct {
	Items           []order.Line           `json:"items"`
	DeliveryAddress user.Address           `json:"deliveryAddress"`
	PaymentMethod   order.PaymentMethod    `json:"paymentMethod"`
	Delivery        *order.DeliveryRequest `json:"deliveryDetails,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
}

// PlaceOrder creates an order for the authenticated user.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validatePlaceOrder(req); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	o, err := h.orders.Place(r.Context(), u.ID, order.PlaceRequest{
		Lines:           req.Items,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		Delivery:        req.Delivery,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondCreated(w, "Order placed successfully", map[string]any{"order": o})
}

// ListOrders serves the authenticated user's order history.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	status := order.Status(r.URL.Query().Get("status"))
	if status != "" && !order.ValidStatus(status) {
		respondError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	orders, pg, err := h.orders.ListForUser(r.Context(), u.ID, status, pageFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"orders":     orderList(orders),
		"pagination": pg,
	})
}

// GetOrder serves one of the authenticated user's orders.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	o, err := h.orders.Get(r.Context(), r.PathValue("id"), u.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"order": o})
}

// CancelOrder cancels one of the authenticated user's orders.
func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body means no reason given.
	_ = decodeOptionalBody(r, &req)

	o, err := h.orders.Cancel(r.Context(), r.PathValue("id"), u.ID, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Order cancelled successfully", map[string]any{"order": o})
}

// RateOrder records the one-time rating of a delivered order.
func (h *Handlers) RateOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	var rating order.Rating
	if !decodeBody(w, r, &rating) {
		return
	}
	if errs := validateRating(rating); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	o, err := h.orders.Rate(r.Context(), r.PathValue("id"), u.ID, rating)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Thank you for your feedback", map[string]any{"order": o})
}

// Admin handlers

// ListAllOrders is the administrative listing across every user.
func (h *Handlers) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := order.AdminFilter{Status: order.Status(q.Get("status"))}
	if filter.Status != "" && !order.ValidStatus(filter.Status) {
		respondError(w, http.StatusBadRequest, "Invalid order status")
		return
	}
	if raw := q.Get("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "startDate must be RFC 3339")
			return
		}
		filter.StartDate = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "endDate must be RFC 3339")
			return
		}
		filter.EndDate = &t
	}

	orders, pg, err := h.orders.ListAll(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"orders":     orderList(orders),
		"pagination": pg,
	})
}

// UpdateOrderStatus is the administrative status transition.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status order.Status `json:"status"`
		Notes  string       `json:"notes,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Notes) > maxNotesLen {
		respondValidation(w, []FieldError{{Field: "notes", Message: "notes must be at most 500 characters"}})
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Order status updated", map[string]any{"order": o})
}

func orderList(orders []*order.Order) []*order.Order {
	if orders == nil {
		return []*order.Order{}
	}
	return orders
}
