package api

import (
	"net/http"

	"github.com/example/bakery-storefront/internal/api/middleware"
	"github.com/example/bakery-storefront/internal/domain/user"
)

// VerifyToken exchanges an identity provider token for the storefront user,
// creating the account on first login and merging any optional profile data.
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken  string              `json:"idToken"`
		UserData *user.ProfileUpdate `json:"userData,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IDToken == "" {
		respondValidation(w, []FieldError{{Field: "idToken", Message: "idToken is required"}})
		return
	}

	claims, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	u, created, err := h.users.EnsureUser(r.Context(), user.Identity{
		SubjectID: claims.SubjectID,
		Phone:     claims.Phone,
		Email:     claims.Email,
	}, req.UserData)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"user":      u,
		"isNewUser": created,
	})
}

// GetProfile serves the authenticated user's profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	respondData(w, http.StatusOK, map[string]any{"user": u})
}

// UpdateProfile applies a partial profile update.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	var update user.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), u.ID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Profile updated", map[string]any{"user": updated})
}

// AddAddress appends an address to the authenticated user's address book.
func (h *Handlers) AddAddress(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	var a user.Address
	if !decodeBody(w, r, &a) {
		return
	}
	if errs := validateAddress(a); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	updated, err := h.users.AddAddress(r.Context(), u.ID, a)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondCreated(w, "Address added", map[string]any{"addresses": updated.Addresses})
}

// UpdateAddress rewrites one address in the authenticated user's book.
func (h *Handlers) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	var a user.Address
	if !decodeBody(w, r, &a) {
		return
	}
	if errs := validateAddress(a); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	updated, err := h.users.UpdateAddress(r.Context(), u.ID, r.PathValue("id"), a)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Address updated", map[string]any{"addresses": updated.Addresses})
}

// RemoveAddress deletes one address from the authenticated user's book.
func (h *Handlers) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	updated, err := h.users.RemoveAddress(r.Context(), u.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Address removed", map[string]any{"addresses": updated.Addresses})
}

// LoyaltyPoints serves the authenticated user's loyalty balance.
func (h *Handlers) LoyaltyPoints(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	respondData(w, http.StatusOK, map[string]any{"loyaltyPoints": u.LoyaltyPoints})
}
