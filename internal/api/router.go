package api

import (
	"log"
	"net/http"

	"github.com/example/bakery-storefront/internal/api/middleware"
)

// NewRouter wires every route. Catalog and category routes are public;
// everything under /api/auth (except verify-token), /api/users and
// /api/orders requires a bearer token; /api/admin additionally requires an
// allow-listed email.
func NewRouter(handlers *Handlers, authn *middleware.Authenticator) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Catalog (public; a valid token still attaches the user)
	mux.Handle("GET /api/products", authn.OptionalAuth(http.HandlerFunc(handlers.ListProducts)))
	mux.Handle("GET /api/products/featured", authn.OptionalAuth(http.HandlerFunc(handlers.FeaturedProducts)))
	mux.Handle("GET /api/products/slug/{slug}", authn.OptionalAuth(http.HandlerFunc(handlers.GetProductBySlug)))
	mux.Handle("GET /api/products/category/{slug}", authn.OptionalAuth(http.HandlerFunc(handlers.ProductsByCategory)))
	mux.Handle("GET /api/products/{id}", authn.OptionalAuth(http.HandlerFunc(handlers.GetProduct)))

	// Categories (public)
	mux.HandleFunc("GET /api/categories", handlers.ListCategories)
	mux.HandleFunc("GET /api/categories/filters", handlers.CategoryFilters)
	mux.HandleFunc("GET /api/categories/{slug}", handlers.GetCategory)

	// Auth & profile
	mux.HandleFunc("POST /api/auth/verify-token", handlers.VerifyToken)
	mux.Handle("GET /api/auth/profile", authn.RequireAuth(http.HandlerFunc(handlers.GetProfile)))
	mux.Handle("PUT /api/auth/profile", authn.RequireAuth(http.HandlerFunc(handlers.UpdateProfile)))
	mux.Handle("POST /api/auth/addresses", authn.RequireAuth(http.HandlerFunc(handlers.AddAddress)))
	mux.Handle("PUT /api/auth/addresses/{id}", authn.RequireAuth(http.HandlerFunc(handlers.UpdateAddress)))
	mux.Handle("DELETE /api/auth/addresses/{id}", authn.RequireAuth(http.HandlerFunc(handlers.RemoveAddress)))
	mux.Handle("GET /api/users/profile", authn.RequireAuth(http.HandlerFunc(handlers.GetProfile)))
	mux.Handle("GET /api/users/loyalty-points", authn.RequireAuth(http.HandlerFunc(handlers.LoyaltyPoints)))

	// Orders
	mux.Handle("POST /api/orders", authn.RequireAuth(http.HandlerFunc(handlers.PlaceOrder)))
	mux.Handle("GET /api/orders", authn.RequireAuth(http.HandlerFunc(handlers.ListOrders)))
	mux.Handle("GET /api/orders/{id}", authn.RequireAuth(http.HandlerFunc(handlers.GetOrder)))
	mux.Handle("PUT /api/orders/{id}/cancel", authn.RequireAuth(http.HandlerFunc(handlers.CancelOrder)))
	mux.Handle("PUT /api/orders/{id}/rating", authn.RequireAuth(http.HandlerFunc(handlers.RateOrder)))

	// Admin. The listing lives under /api/orders; the literal segments win
	// over the {id} wildcard, so it coexists with GET /api/orders/{id}.
	mux.Handle("GET /api/orders/admin/all",
		authn.RequireAuth(authn.RequireAdmin(http.HandlerFunc(handlers.ListAllOrders))))
	mux.Handle("GET /api/admin/orders",
		authn.RequireAuth(authn.RequireAdmin(http.HandlerFunc(handlers.ListAllOrders))))
	mux.Handle("PUT /api/orders/{id}/status",
		authn.RequireAuth(authn.RequireAdmin(http.HandlerFunc(handlers.UpdateOrderStatus))))

	return withLogging(withNotFound(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// withNotFound rewrites the mux's plain-text 404/405 into the JSON envelope.
func withNotFound(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			respondError(w, http.StatusNotFound, "Route not found")
			return
		}
		mux.ServeHTTP(w, r)
	})
}
