// Package api exposes the storefront over HTTP. Every response uses the
// envelope {success, data?, message?, errors?}.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/example/bakery-storefront/internal/auth"
	"github.com/example/bakery-storefront/internal/domain/category"
	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/domain/user"
)

type Handlers struct {
	catalog    *product.CatalogService
	categories *category.Service
	orders     *order.Service
	users      *user.Service
	verifier   auth.TokenVerifier
}

func NewHandlers(
	catalog *product.CatalogService,
	categories *category.Service,
	orders *order.Service,
	users *user.Service,
	verifier auth.TokenVerifier,
) *Handlers {
	return &Handlers{
		catalog:    catalog,
		categories: categories,
		orders:     orders,
		users:      users,
		verifier:   verifier,
	}
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, message string, data any) {
	respondJSON(w, http.StatusCreated, envelope{Success: true, Data: data, Message: message})
}

func respondMessage(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Message: message})
}

func respondValidation(w http.ResponseWriter, fieldErrors []FieldError) {
	respondJSON(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}

// respondServiceError maps domain sentinels to HTTP statuses. Anything
// unrecognized is logged and reported as a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrAddressNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, product.ErrUnavailable),
		errors.Is(err, order.ErrOutOfStock),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrNotCancellable),
		errors.Is(err, order.ErrNotDelivered),
		errors.Is(err, order.ErrAlreadyRated),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, user.ErrPhoneTaken):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[API] Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

// decodeBody parses the JSON request body into dst, reporting a 400 on
// malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// decodeOptionalBody parses the body when one is sent; an absent or empty
// body is not an error.
func decodeOptionalBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}
