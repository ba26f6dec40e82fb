// Package middleware carries the authentication chain: bearer token to
// verified claims to storefront user.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/bakery-storefront/internal/auth"
	"github.com/example/bakery-storefront/internal/domain/user"
)

// respondError writes a JSON error response in the API envelope
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// ExtractToken extracts the bearer token from the Authorization header
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Authenticator resolves bearer tokens to storefront users. Accounts are
// created on first sight of a verified subject.
type Authenticator struct {
	verifier auth.TokenVerifier
	users    *user.Service
	admins   map[string]bool
}

// NewAuthenticator creates an Authenticator with the given admin allow-list.
func NewAuthenticator(verifier auth.TokenVerifier, users *user.Service, adminEmails []string) *Authenticator {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		if email != "" {
			admins[strings.ToLower(email)] = true
		}
	}
	return &Authenticator{
		verifier: verifier,
		users:    users,
		admins:   admins,
	}
}

// RequireAuth verifies the bearer token and puts the matching user on the
// request context, creating the account on first login.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ExtractToken(r)
		if tokenString == "" {
			respondError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := a.verifier.Verify(r.Context(), tokenString)
		if err != nil {
			respondError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		u, _, err := a.users.EnsureUser(r.Context(), user.Identity{
			SubjectID: claims.SubjectID,
			Phone:     claims.Phone,
			Email:     claims.Email,
		}, nil)
		if err != nil {
			respondError(w, "Failed to load user account", http.StatusInternalServerError)
			return
		}
		if !u.IsActive {
			respondError(w, "Account is deactivated", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the user to the context when a valid bearer token is
// sent, and serves the request anonymously otherwise. Invalid tokens and
// deactivated accounts degrade to anonymous instead of failing.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ExtractToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.verifier.Verify(r.Context(), tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		u, _, err := a.users.EnsureUser(r.Context(), user.Identity{
			SubjectID: claims.SubjectID,
			Phone:     claims.Phone,
			Email:     claims.Email,
		}, nil)
		if err != nil || !u.IsActive {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a handler behind the admin allow-list. It must run
// inside RequireAuth.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			respondError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if !a.IsAdmin(u) {
			respondError(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsAdmin reports whether the user's email is on the admin allow-list.
func (a *Authenticator) IsAdmin(u *user.User) bool {
	return u.Email != "" && a.admins[strings.ToLower(u.Email)]
}

// UserFromContext retrieves the authenticated user from the request context
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}
